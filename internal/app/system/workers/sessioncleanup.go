// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// IdleCloser tears down sessions unused for longer than a threshold.
type IdleCloser interface {
	CloseIdle(threshold time.Duration) int
}

// SessionCleanup is a background worker that closes idle console sessions.
type SessionCleanup struct {
	sessions          IdleCloser
	log               *zap.Logger
	interval          time.Duration
	inactiveThreshold time.Duration
	stopCh            chan struct{}
	stopOnce          sync.Once
	wg                sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - sessions: the console session registry
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - inactiveThreshold: how long a session must be idle before closing (e.g., 30 minutes)
func NewSessionCleanup(sessions IdleCloser, logger *zap.Logger, interval, inactiveThreshold time.Duration) *SessionCleanup {
	return &SessionCleanup{
		sessions:          sessions,
		log:               logger,
		interval:          interval,
		inactiveThreshold: inactiveThreshold,
		stopCh:            make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("inactive_threshold", w.inactiveThreshold))
}

// Stop signals the worker to stop and waits for it to finish. Calling Stop
// more than once is safe.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *SessionCleanup) cleanup() {
	if count := w.sessions.CloseIdle(w.inactiveThreshold); count > 0 {
		w.log.Info("closed idle console sessions", zap.Int("count", count))
	}
}
