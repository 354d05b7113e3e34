// Package billing holds the overage pricing rules for storage and bandwidth.
package billing

import (
	"math"

	"github.com/jorgekof/hostreamly-admin/internal/domain/limit"
)

// Resource is a metered plan resource.
type Resource string

// Metered resources.
const (
	ResourceStorage   Resource = "storage"
	ResourceBandwidth Resource = "bandwidth"
)

// Prices are unit prices per GB of overage.
type Prices struct {
	Storage   float64
	Bandwidth float64
}

// Overage is usage above quota, in GB.
type Overage struct {
	Storage   float64
	Bandwidth float64
}

// IsZero reports whether nothing is owed for either resource.
func (o Overage) IsZero() bool {
	return o.Storage == 0 && o.Bandwidth == 0
}

// Charges is the priced overage. Amounts are not rounded.
type Charges struct {
	StorageCharge   float64
	BandwidthCharge float64
	TotalCharge     float64
}

// ComputeOverage returns max(0, usage - limit); 0 when the limit is unlimited.
func ComputeOverage(usage float64, l limit.Limit) float64 {
	return l.Overage(usage)
}

// ComputeCharges prices both overages and sums them.
func ComputeCharges(storageOverage, bandwidthOverage float64, p Prices) Charges {
	storage := storageOverage * p.Storage
	bandwidth := bandwidthOverage * p.Bandwidth
	return Charges{
		StorageCharge:   storage,
		BandwidthCharge: bandwidth,
		TotalCharge:     storage + bandwidth,
	}
}

// MinorUnits converts an amount to integer cents, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
