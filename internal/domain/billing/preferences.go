package billing

import (
	"math"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
)

// Preferences are an account's overage billing settings.
type Preferences struct {
	autoCharge            bool
	storagePrice          float64
	bandwidthPrice        float64
	notificationThreshold float64
}

// NewPreferences validates and creates Preferences.
// Prices are per GB and must be non-negative; the threshold is a fraction in (0, 1].
func NewPreferences(autoCharge bool, storagePrice, bandwidthPrice, threshold float64) (Preferences, error) {
	if !isNonNegative(storagePrice) {
		return Preferences{}, domain.NewFieldError("storage_price", "must be a non-negative number")
	}
	if !isNonNegative(bandwidthPrice) {
		return Preferences{}, domain.NewFieldError("bandwidth_price", "must be a non-negative number")
	}
	if math.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		return Preferences{}, domain.NewFieldError("notification_threshold", "must be in (0, 1]")
	}
	return Preferences{
		autoCharge:            autoCharge,
		storagePrice:          storagePrice,
		bandwidthPrice:        bandwidthPrice,
		notificationThreshold: threshold,
	}, nil
}

// AutoCharge reports whether overages are charged without manual approval.
func (p Preferences) AutoCharge() bool { return p.autoCharge }

// StoragePrice returns the price per GB of storage overage.
func (p Preferences) StoragePrice() float64 { return p.storagePrice }

// BandwidthPrice returns the price per GB of bandwidth overage.
func (p Preferences) BandwidthPrice() float64 { return p.bandwidthPrice }

// NotificationThreshold returns the usage fraction that triggers a warning.
func (p Preferences) NotificationThreshold() float64 { return p.notificationThreshold }

// Prices returns the unit prices used by ComputeCharges.
func (p Preferences) Prices() Prices {
	return Prices{Storage: p.storagePrice, Bandwidth: p.bandwidthPrice}
}

func isNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
