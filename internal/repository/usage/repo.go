// Package usage stores the metered usage snapshot of each account as a hash.
package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	"github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	"github.com/jorgekof/hostreamly-admin/internal/domain/limit"
)

// store is the consumer interface for usage snapshots (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/billing.UsageRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a usage repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Get returns the latest snapshot, or domain.ErrNotFound when nothing was metered.
func (r *Repo) Get(ctx context.Context, accountID string) (billing.Snapshot, error) {
	m, err := r.store.HGetAll(ctx, r.key(accountID))
	if err != nil {
		return billing.Snapshot{}, fmt.Errorf("hgetall usage %s: %w", accountID, err)
	}
	if len(m) == 0 {
		return billing.Snapshot{}, domain.ErrNotFound
	}
	return snapshotFromHash(m)
}

// Save replaces the snapshot. Every field is written so no stale value survives.
func (r *Repo) Save(ctx context.Context, accountID string, s billing.Snapshot) error {
	if err := r.store.HSet(ctx, r.key(accountID), snapshotToHash(s)); err != nil {
		return fmt.Errorf("hset usage %s: %w", accountID, err)
	}
	return nil
}

func snapshotToHash(s billing.Snapshot) map[string]string {
	return map[string]string{
		"storage_used":    formatFloat(s.StorageUsed()),
		"bandwidth_used":  formatFloat(s.BandwidthUsed()),
		"storage_limit":   s.StorageLimit().String(),
		"bandwidth_limit": s.BandwidthLimit().String(),
		"updated_at":      strconv.FormatInt(s.UpdatedAt().UnixMilli(), 10),
	}
}

func snapshotFromHash(m map[string]string) (billing.Snapshot, error) {
	storageUsed, err := strconv.ParseFloat(m["storage_used"], 64)
	if err != nil {
		return billing.Snapshot{}, fmt.Errorf("invalid storage_used: %w", err)
	}
	bandwidthUsed, err := strconv.ParseFloat(m["bandwidth_used"], 64)
	if err != nil {
		return billing.Snapshot{}, fmt.Errorf("invalid bandwidth_used: %w", err)
	}
	storageLimit, err := limit.Parse(m["storage_limit"])
	if err != nil {
		return billing.Snapshot{}, fmt.Errorf("invalid storage_limit: %w", err)
	}
	bandwidthLimit, err := limit.Parse(m["bandwidth_limit"])
	if err != nil {
		return billing.Snapshot{}, fmt.Errorf("invalid bandwidth_limit: %w", err)
	}
	var updatedAt time.Time
	if ms, err := strconv.ParseInt(m["updated_at"], 10, 64); err == nil {
		updatedAt = time.UnixMilli(ms).UTC()
	}
	return billing.NewSnapshot(storageUsed, bandwidthUsed, storageLimit, bandwidthLimit, updatedAt)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *Repo) key(accountID string) string {
	return fmt.Sprintf("%saccount:%s:usage", r.prefix, accountID)
}
