package charge

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain/billing"
)

func chargeToHash(c billing.Charge) map[string]string {
	return map[string]string{
		"id":                c.ID(),
		"account_id":        c.AccountID(),
		"period_start":      formatTime(c.PeriodStart()),
		"period_end":        formatTime(c.PeriodEnd()),
		"storage_overage":   formatFloat(c.StorageOverage()),
		"bandwidth_overage": formatFloat(c.BandwidthOverage()),
		"total_charge":      formatFloat(c.TotalCharge()),
		"status":            string(c.Status()),
		"created_at":        formatTime(c.CreatedAt()),
	}
}

func chargeFromHash(m map[string]string) (billing.Charge, error) {
	start, err := parseTime(m["period_start"])
	if err != nil {
		return billing.Charge{}, fmt.Errorf("invalid period_start: %w", err)
	}
	end, err := parseTime(m["period_end"])
	if err != nil {
		return billing.Charge{}, fmt.Errorf("invalid period_end: %w", err)
	}
	createdAt, err := parseTime(m["created_at"])
	if err != nil {
		return billing.Charge{}, fmt.Errorf("invalid created_at: %w", err)
	}
	floats := make(map[string]float64, 3)
	for _, f := range []string{"storage_overage", "bandwidth_overage", "total_charge"} {
		v, err := strconv.ParseFloat(m[f], 64)
		if err != nil {
			return billing.Charge{}, fmt.Errorf("invalid %s: %w", f, err)
		}
		floats[f] = v
	}
	status := billing.Status(m["status"])
	if !status.IsValid() {
		return billing.Charge{}, fmt.Errorf("invalid status %q", m["status"])
	}

	return billing.Reconstruct(
		m["id"], m["account_id"], start, end,
		floats["storage_overage"], floats["bandwidth_overage"], floats["total_charge"],
		status, createdAt,
	), nil
}

func formatTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseTime(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
