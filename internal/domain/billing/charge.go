package billing

import (
	"fmt"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
)

// Status is the lifecycle state of an overage charge.
type Status string

// Charge statuses.
const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusFailed
}

// Charge is a historical overage charge for one billing period.
// Only the status changes after creation.
type Charge struct {
	id               string
	accountID        string
	periodStart      time.Time
	periodEnd        time.Time
	storageOverage   float64
	bandwidthOverage float64
	totalCharge      float64
	status           Status
	createdAt        time.Time
}

// NewCharge creates a pending charge for the period [start, end).
func NewCharge(id, accountID string, start, end time.Time, o Overage, c Charges, createdAt time.Time) (Charge, error) {
	if id == "" {
		return Charge{}, domain.NewFieldError("id", "is required")
	}
	if accountID == "" {
		return Charge{}, domain.NewFieldError("account_id", "is required")
	}
	if !end.After(start) {
		return Charge{}, domain.NewFieldError("period_end", "must be after period_start")
	}
	return Charge{
		id:               id,
		accountID:        accountID,
		periodStart:      start,
		periodEnd:        end,
		storageOverage:   o.Storage,
		bandwidthOverage: o.Bandwidth,
		totalCharge:      c.TotalCharge,
		status:           StatusPending,
		createdAt:        createdAt,
	}, nil
}

// Reconstruct hydrates a Charge from storage without validation.
func Reconstruct(
	id, accountID string, start, end time.Time,
	storageOverage, bandwidthOverage, total float64,
	status Status, createdAt time.Time,
) Charge {
	return Charge{
		id:               id,
		accountID:        accountID,
		periodStart:      start,
		periodEnd:        end,
		storageOverage:   storageOverage,
		bandwidthOverage: bandwidthOverage,
		totalCharge:      total,
		status:           status,
		createdAt:        createdAt,
	}
}

// ID returns the charge id.
func (c Charge) ID() string { return c.id }

// AccountID returns the owning account.
func (c Charge) AccountID() string { return c.accountID }

// PeriodStart returns the inclusive period start.
func (c Charge) PeriodStart() time.Time { return c.periodStart }

// PeriodEnd returns the exclusive period end.
func (c Charge) PeriodEnd() time.Time { return c.periodEnd }

// StorageOverage returns GB of storage overage billed.
func (c Charge) StorageOverage() float64 { return c.storageOverage }

// BandwidthOverage returns GB of bandwidth overage billed.
func (c Charge) BandwidthOverage() float64 { return c.bandwidthOverage }

// TotalCharge returns the billed amount.
func (c Charge) TotalCharge() float64 { return c.totalCharge }

// Status returns the lifecycle state.
func (c Charge) Status() Status { return c.status }

// CreatedAt returns the creation time.
func (c Charge) CreatedAt() time.Time { return c.createdAt }

// WithStatus returns a copy moved to next. Only pending charges can settle.
func (c Charge) WithStatus(next Status) (Charge, error) {
	if !next.IsValid() {
		return Charge{}, domain.NewFieldError("status", fmt.Sprintf("unknown status %q", next))
	}
	if c.status != StatusPending || next == StatusPending {
		return Charge{}, fmt.Errorf("%s -> %s: %w", c.status, next, domain.ErrInvalidTransition)
	}
	c.status = next
	return c, nil
}
