package billing

import "github.com/jorgekof/hostreamly-admin/internal/domain/limit"

// Threshold describes how close a resource is to its quota.
type Threshold struct {
	Resource Resource
	// Fraction is used / limit; zero and meaningless when Bounded is false.
	Fraction    float64
	Bounded     bool
	Approaching bool
	Exceeded    bool
}

// DetectThresholds evaluates both resources against the notification threshold.
// Unlimited resources never approach or exceed.
func DetectThresholds(s Snapshot, threshold float64) []Threshold {
	return []Threshold{
		detect(ResourceStorage, s.StorageUsed(), s.StorageLimit(), threshold),
		detect(ResourceBandwidth, s.BandwidthUsed(), s.BandwidthLimit(), threshold),
	}
}

func detect(r Resource, used float64, l limit.Limit, threshold float64) Threshold {
	fraction, ok := l.Fraction(used)
	if !ok {
		return Threshold{Resource: r}
	}
	return Threshold{
		Resource:    r,
		Fraction:    fraction,
		Bounded:     true,
		Approaching: fraction >= threshold,
		Exceeded:    l.Overage(used) > 0,
	}
}
