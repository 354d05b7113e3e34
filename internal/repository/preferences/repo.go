// Package preferences stores per-account overage billing preferences as JSON strings.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jorgekof/hostreamly-admin/internal/db"
	"github.com/jorgekof/hostreamly-admin/internal/domain"
	"github.com/jorgekof/hostreamly-admin/internal/domain/billing"
)

// store is the consumer interface for preferences (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements usecase/billing.PreferencesRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a preferences repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

type preferencesRow struct {
	AutoCharge            bool    `json:"auto_charge"`
	StoragePrice          float64 `json:"storage_price"`
	BandwidthPrice        float64 `json:"bandwidth_price"`
	NotificationThreshold float64 `json:"notification_threshold"`
}

// Get returns the saved preferences, or domain.ErrNotFound when none were saved.
func (r *Repo) Get(ctx context.Context, accountID string) (billing.Preferences, error) {
	data, err := r.store.Get(ctx, r.key(accountID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return billing.Preferences{}, domain.ErrNotFound
		}
		return billing.Preferences{}, fmt.Errorf("get preferences %s: %w", accountID, err)
	}

	var row preferencesRow
	if err := json.Unmarshal(data, &row); err != nil {
		return billing.Preferences{}, fmt.Errorf("unmarshal preferences %s: %w", accountID, err)
	}
	p, err := billing.NewPreferences(row.AutoCharge, row.StoragePrice, row.BandwidthPrice, row.NotificationThreshold)
	if err != nil {
		return billing.Preferences{}, fmt.Errorf("stored preferences %s: %w", accountID, err)
	}
	return p, nil
}

// Save overwrites the saved preferences in a single SET.
func (r *Repo) Save(ctx context.Context, accountID string, p billing.Preferences) error {
	data, err := json.Marshal(preferencesRow{
		AutoCharge:            p.AutoCharge(),
		StoragePrice:          p.StoragePrice(),
		BandwidthPrice:        p.BandwidthPrice(),
		NotificationThreshold: p.NotificationThreshold(),
	})
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := r.store.Set(ctx, r.key(accountID), data); err != nil {
		return fmt.Errorf("set preferences %s: %w", accountID, err)
	}
	return nil
}

func (r *Repo) key(accountID string) string {
	return fmt.Sprintf("%saccount:%s:preferences", r.prefix, accountID)
}
