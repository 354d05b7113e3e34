package billing

import (
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	"github.com/jorgekof/hostreamly-admin/internal/domain/limit"
)

// Snapshot is an account's metered usage and plan limits, in GB.
type Snapshot struct {
	storageUsed    float64
	bandwidthUsed  float64
	storageLimit   limit.Limit
	bandwidthLimit limit.Limit
	updatedAt      time.Time
}

// NewSnapshot validates and creates a Snapshot.
func NewSnapshot(storageUsed, bandwidthUsed float64, storageLimit, bandwidthLimit limit.Limit, updatedAt time.Time) (Snapshot, error) {
	if !isNonNegative(storageUsed) {
		return Snapshot{}, domain.NewFieldError("storage_used", "must be a non-negative number")
	}
	if !isNonNegative(bandwidthUsed) {
		return Snapshot{}, domain.NewFieldError("bandwidth_used", "must be a non-negative number")
	}
	return Snapshot{
		storageUsed:    storageUsed,
		bandwidthUsed:  bandwidthUsed,
		storageLimit:   storageLimit,
		bandwidthLimit: bandwidthLimit,
		updatedAt:      updatedAt,
	}, nil
}

// StorageUsed returns stored GB.
func (s Snapshot) StorageUsed() float64 { return s.storageUsed }

// BandwidthUsed returns GB served in the current period.
func (s Snapshot) BandwidthUsed() float64 { return s.bandwidthUsed }

// StorageLimit returns the storage quota.
func (s Snapshot) StorageLimit() limit.Limit { return s.storageLimit }

// BandwidthLimit returns the bandwidth quota.
func (s Snapshot) BandwidthLimit() limit.Limit { return s.bandwidthLimit }

// UpdatedAt returns when the snapshot was metered.
func (s Snapshot) UpdatedAt() time.Time { return s.updatedAt }

// Overage returns the overage for both resources.
func (s Snapshot) Overage() Overage {
	return Overage{
		Storage:   ComputeOverage(s.storageUsed, s.storageLimit),
		Bandwidth: ComputeOverage(s.bandwidthUsed, s.bandwidthLimit),
	}
}
