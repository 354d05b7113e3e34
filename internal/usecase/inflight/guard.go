// Package inflight rejects a second run of an operation while the first is pending.
package inflight

import (
	"fmt"
	"sync"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
)

// Guard is a set of keys that are currently busy.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// New creates an empty guard.
func New() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// Acquire marks key busy and returns its release func.
// A key that is already busy yields domain.ErrOperationInProgress.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.busy[key]; ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrOperationInProgress)
	}
	g.busy[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is held.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
