// Package credential stores the platform-wide payment provider credential.
package credential

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
)

// store is the consumer interface for the credential (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/credential.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a credential repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Get returns the stored credential, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context) (domcred.Stored, error) {
	m, err := r.store.HGetAll(ctx, r.key())
	if err != nil {
		return domcred.Stored{}, fmt.Errorf("hgetall credential: %w", err)
	}
	if len(m) == 0 || m["secret_key"] == "" {
		return domcred.Stored{}, domain.ErrNotFound
	}
	return storedFromHash(m), nil
}

// Save replaces the credential and its test result.
func (r *Repo) Save(ctx context.Context, s domcred.Stored) error {
	if err := r.store.HSet(ctx, r.key(), storedToHash(s)); err != nil {
		return fmt.Errorf("hset credential: %w", err)
	}
	return nil
}

// SaveTestResult updates only the test fields.
func (r *Repo) SaveTestResult(ctx context.Context, res domcred.TestResult) error {
	if err := r.store.HSet(ctx, r.key(), testToHash(res)); err != nil {
		return fmt.Errorf("hset credential test: %w", err)
	}
	return nil
}

// Delete removes the credential. Deleting nothing is not an error.
func (r *Repo) Delete(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key()); err != nil {
		return fmt.Errorf("del credential: %w", err)
	}
	return nil
}

func storedToHash(s domcred.Stored) map[string]string {
	m := testToHash(s.LastTest)
	m["secret_key"] = s.Credential.SecretKey()
	m["webhook_secret"] = s.Credential.WebhookSecret()
	m["updated_at"] = formatTime(s.UpdatedAt)
	return m
}

func testToHash(res domcred.TestResult) map[string]string {
	state := res.State
	if state == "" {
		state = domcred.TestUntested
	}
	return map[string]string{
		"test_state":   string(state),
		"test_message": res.Message,
		"tested_at":    formatTime(res.TestedAt),
	}
}

func storedFromHash(m map[string]string) domcred.Stored {
	state := domcred.TestState(m["test_state"])
	if state == "" {
		state = domcred.TestUntested
	}
	return domcred.Stored{
		Credential: domcred.Reconstruct(m["secret_key"], m["webhook_secret"]),
		LastTest: domcred.TestResult{
			State:    state,
			Message:  m["test_message"],
			TestedAt: parseTime(m["tested_at"]),
		},
		UpdatedAt: parseTime(m["updated_at"]),
	}
}

// Zero times are stored as "".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseTime(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (r *Repo) key() string {
	return r.prefix + "provider:credential"
}
