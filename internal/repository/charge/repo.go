// Package charge stores overage charges, one hash per charge.
package charge

import (
	"context"
	"fmt"
	"sort"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	"github.com/jorgekof/hostreamly-admin/internal/domain/billing"
)

// store is the consumer interface for charges (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/billing.ChargeRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a charge repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Save writes the whole charge.
func (r *Repo) Save(ctx context.Context, c billing.Charge) error {
	if err := r.store.HSet(ctx, r.chargeKey(c.AccountID(), c.ID()), chargeToHash(c)); err != nil {
		return fmt.Errorf("hset charge %s: %w", c.ID(), err)
	}
	return nil
}

// Get retrieves one charge of an account.
func (r *Repo) Get(ctx context.Context, accountID, id string) (billing.Charge, error) {
	m, err := r.store.HGetAll(ctx, r.chargeKey(accountID, id))
	if err != nil {
		return billing.Charge{}, fmt.Errorf("hgetall charge %s: %w", id, err)
	}
	if len(m) == 0 {
		return billing.Charge{}, domain.ErrNotFound
	}
	return chargeFromHash(m)
}

// List returns the account's charges, newest first.
func (r *Repo) List(ctx context.Context, accountID string) ([]billing.Charge, error) {
	keys, err := r.store.Scan(ctx, r.chargeKey(accountID, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan charges: %w", err)
	}
	if len(keys) == 0 {
		return []billing.Charge{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi charges: %w", err)
	}

	charges := make([]billing.Charge, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		c, err := chargeFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse charge %s: %w", keys[i], err)
		}
		charges = append(charges, c)
	}

	sort.SliceStable(charges, func(i, j int) bool {
		return charges[i].CreatedAt().After(charges[j].CreatedAt())
	})

	return charges, nil
}

// Key pattern: {prefix}account:{account}:charge:{id}

func (r *Repo) chargeKey(accountID, id string) string {
	return fmt.Sprintf("%saccount:%s:charge:%s", r.prefix, accountID, id)
}
