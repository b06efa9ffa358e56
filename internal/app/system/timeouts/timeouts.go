// Package timeouts provides centralized timeout values for console
// operations against the data service.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Fetch: one resource read inside an aggregate pass
//   - Mutate: one record mutation (bulk fan-out applies it per record)
//   - Bulk: a whole bulk operation including its follow-up refresh
//
// Values can be overridden at startup with Configure. Zero values keep
// the current setting.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultFetch  = 10 * time.Second
	DefaultMutate = 5 * time.Second
	DefaultBulk   = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	fetch  = DefaultFetch
	mutate = DefaultMutate
	bulk   = DefaultBulk
)

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Fetch bounds a single resource fetch. A fetch that runs past it counts
// as a network failure for that resource only.
func Fetch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return fetch
}

func Mutate() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return mutate
}

func Bulk() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return bulk
}

// Config holds timeout configuration values.
type Config struct {
	Ping   time.Duration
	Fetch  time.Duration
	Mutate time.Duration
	Bulk   time.Duration
}

// Configure sets custom timeout values. Call during startup.
//
//	timeouts.Configure(timeouts.Config{Fetch: 20 * time.Second})
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Fetch > 0 {
		fetch = cfg.Fetch
	}
	if cfg.Mutate > 0 {
		mutate = cfg.Mutate
	}
	if cfg.Bulk > 0 {
		bulk = cfg.Bulk
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	fetch = DefaultFetch
	mutate = DefaultMutate
	bulk = DefaultBulk
}

// Current returns the active configuration, for logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Fetch: fetch, Mutate: mutate, Bulk: bulk}
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Bulk(), h.Log, "bulk delete")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
