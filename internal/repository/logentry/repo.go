// Package logentry stores system log entries, one hash per entry.
package logentry

import (
	"context"
	"fmt"
	"sort"

	"github.com/jorgekof/hostreamly-admin/internal/db"
	"github.com/jorgekof/hostreamly-admin/internal/domain"
	domlog "github.com/jorgekof/hostreamly-admin/internal/domain/logentry"
)

// store is the consumer interface for log entries (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Exists(ctx context.Context, key string) (bool, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/logs.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a log entry repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Append stores one entry. Entries are immutable: an id that is already stored
// yields domain.ErrAlreadyExists.
func (r *Repo) Append(ctx context.Context, e domlog.Entry) error {
	exists, err := r.store.Exists(ctx, r.entryKey(e.ID()))
	if err != nil {
		return fmt.Errorf("check log entry %s: %w", e.ID(), err)
	}
	if exists {
		return fmt.Errorf("log entry %s: %w", e.ID(), domain.ErrAlreadyExists)
	}
	if err := r.store.HSet(ctx, r.entryKey(e.ID()), entryToHash(e)); err != nil {
		return fmt.Errorf("hset log entry %s: %w", e.ID(), err)
	}
	return nil
}

// Seed stores entries in one pipeline when the collection is empty.
// Returns the number of entries written.
func (r *Repo) Seed(ctx context.Context, entries []domlog.Entry) (int, error) {
	keys, err := r.store.Scan(ctx, r.entryKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan log entries: %w", err)
	}
	if len(keys) > 0 || len(entries) == 0 {
		return 0, nil
	}

	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		items[i] = db.HashSetItem{Key: r.entryKey(e.ID()), Fields: entryToHash(e)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("seed log entries: %w", err)
	}
	return len(entries), nil
}

// List returns every entry, newest first. Ties are broken by id.
func (r *Repo) List(ctx context.Context) ([]domlog.Entry, error) {
	keys, err := r.store.Scan(ctx, r.entryKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan log entries: %w", err)
	}
	if len(keys) == 0 {
		return []domlog.Entry{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi log entries: %w", err)
	}

	entries := make([]domlog.Entry, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		e, err := entryFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse log entry %s: %w", keys[i], err)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].Timestamp(), entries[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].ID() < entries[j].ID()
	})

	return entries, nil
}

func (r *Repo) entryKey(id string) string {
	return fmt.Sprintf("%slog:%s", r.prefix, id)
}
