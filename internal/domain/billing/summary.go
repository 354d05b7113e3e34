package billing

// Summary is the derived billing view for one account.
type Summary struct {
	Snapshot    Snapshot
	Preferences Preferences
	Overage     Overage
	Charges     Charges
	Thresholds  []Threshold
}

// Summarize prices the snapshot with the given preferences.
func Summarize(s Snapshot, p Preferences) Summary {
	o := s.Overage()
	return Summary{
		Snapshot:    s,
		Preferences: p,
		Overage:     o,
		Charges:     ComputeCharges(o.Storage, o.Bandwidth, p.Prices()),
		Thresholds:  DetectThresholds(s, p.NotificationThreshold()),
	}
}
