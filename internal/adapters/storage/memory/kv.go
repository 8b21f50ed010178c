// Package memory implements ports.KeyValueStore in process memory.
// It backs the CLI's throwaway mode and the tests, and can emulate a storage
// quota so write failures can be exercised.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
)

// ErrQuotaExceeded is the cause reported when a write would exceed the quota.
var ErrQuotaExceeded = errors.New("quota exceeded")

// Store is a map guarded by a mutex.
type Store struct {
	mu         sync.RWMutex
	values     map[string]string
	quotaBytes int
}

// Option configures a Store.
type Option func(*Store)

// WithQuota limits the total size of keys plus values in bytes. Zero disables the limit.
func WithQuota(bytes int) Option {
	return func(s *Store) {
		s.quotaBytes = bytes
	}
}

// WithValue preloads a value, e.g. to simulate existing or corrupt data.
func WithValue(key, value string) Option {
	return func(s *Store) {
		s.values[key] = value
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{values: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]

	return v, ok, nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageWriteError(key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quotaBytes > 0 {
		used := len(key) + len(value)
		for k, v := range s.values {
			if k != key {
				used += len(k) + len(v)
			}
		}

		if used > s.quotaBytes {
			return domain.NewStorageWriteError(key,
				fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used, s.quotaBytes))
		}
	}

	s.values[key] = value

	return nil
}

// SetQuota changes the quota at runtime.
func (s *Store) SetQuota(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotaBytes = bytes
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "storage"
}

// Check implements ports.HealthChecker. Memory is always available.
func (s *Store) Check(context.Context) error {
	return nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return nil
}
