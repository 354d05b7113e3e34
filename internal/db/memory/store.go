// Package memory is an in-process db.Store used by the "memory" driver for
// local runs and end-to-end tests. Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/db"
)

var _ db.Store = (*Store)(nil)

// Store keeps hashes and strings in maps guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	hashes  map[string]map[string]string
	strings map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		hashes:  make(map[string]map[string]string),
		strings: make(map[string][]byte),
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// HSet merges fields into the hash at key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hsetLocked(key, fields)
	return nil
}

func (s *Store) hsetLocked(key string, fields map[string]string) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
}

// HSetMulti stores several hashes atomically.
func (s *Store) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if len(item.Fields) > 0 {
			s.hsetLocked(item.Key, item.Fields)
		}
	}
	return nil
}

// HGetAll returns a copy of the hash at key (empty map when missing).
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyHash(s.hashes[key]), nil
}

// HGetAllMulti returns copies of several hashes in key order.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = copyHash(s.hashes[k])
	}
	return out, nil
}

// Del removes key from both keyspaces.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
	delete(s.strings, key)
	return nil
}

// Exists reports whether key is present in either keyspace.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, h := s.hashes[key]
	_, str := s.strings[key]
	return h || str, nil
}

// Scan returns keys matching a Redis MATCH glob, sorted.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.hashes {
		if matchGlob(pattern, k) {
			keys = append(keys, k)
		}
	}
	for k := range s.strings {
		if matchGlob(pattern, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Get returns a copy of the string value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.strings[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value at key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = append([]byte(nil), value...)
	return nil
}

func copyHash(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
