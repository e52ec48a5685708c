// Package session keeps per-browser uploaded datasets in memory.
package session

import "time"

// Default store configuration constants.
const (
	defaultMaxSessions = 256
	defaultTTL         = 30 * time.Minute
)

// Option applies a configuration option to the in-memory store.
type Option func(*memoryStore)

// WithMaxSessions sets how many sessions are kept. When the store is full the
// least recently used session is evicted. n <= 0 keeps the default.
func WithMaxSessions(n int) Option {
	return func(s *memoryStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithTTL sets how long an idle session lives. ttl <= 0 disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *memoryStore) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *memoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEvictHook registers a callback run after a session is evicted or expired.
func WithEvictHook(fn func(id string)) Option {
	return func(s *memoryStore) {
		s.onEvict = fn
	}
}
