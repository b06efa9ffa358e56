// internal/app/console/refresh/scheduler.go

// Package refresh drives the console's polling loop.
//
// A Scheduler owns one in-flight guard shared by every trigger source:
// timer ticks, manual refreshes and post-mutation refreshes. At most one
// aggregate pass runs at a time. Ticks and manual triggers that find a pass
// in flight are dropped; post-mutation refreshes wait their turn so they
// always observe the mutation.
package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/system/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Refresh after Close.
var ErrClosed = errors.New("refresh scheduler closed")

// Trigger sources, used in logs and metrics.
const (
	SourceTimer    = "timer"
	SourceManual   = "manual"
	SourceMutation = "mutation"
)

// Loader runs one aggregate pass.
type Loader interface {
	Load(ctx context.Context) *loader.Snapshot
}

// Sink installs a finished snapshot.
type Sink interface {
	ReplaceSnapshot(snap *loader.Snapshot) bool
}

// State is the observable refresh state.
type State struct {
	Enabled     bool          `json:"enabled"`
	Interval    time.Duration `json:"interval"`
	LastRefresh time.Time     `json:"last_refresh,omitzero"`
	InFlight    bool          `json:"in_flight"`
}

// TickerFunc starts a ticker and returns its channel and stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	loader    Loader
	sink      Sink
	interval  time.Duration
	log       *zap.Logger
	metrics   *metrics.Console
	newTicker TickerFunc

	guard    *semaphore.Weighted
	inFlight atomic.Bool

	// life is canceled by Close; every pass and guard wait derives from it.
	life context.Context
	kill context.CancelFunc

	mu          sync.Mutex
	enabled     bool
	closed      bool
	lastRefresh time.Time
	stopLoop    context.CancelFunc
	loopDone    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithMetrics(m *metrics.Console) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithTicker replaces the wall-clock ticker (tests).
func WithTicker(f TickerFunc) Option {
	return func(s *Scheduler) { s.newTicker = f }
}

// New returns a stopped scheduler.
func New(l Loader, sink Sink, interval time.Duration, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		loader:    l,
		sink:      sink,
		interval:  interval,
		log:       logger,
		newTicker: realTicker,
		guard:     semaphore.NewWeighted(1),
	}
	s.life, s.kill = context.WithCancel(context.Background())
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start enables auto-refresh. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.enabled {
		return
	}
	ctx, cancel := context.WithCancel(s.life)
	ticks, stopTicker := s.newTicker(s.interval)
	done := make(chan struct{})

	s.enabled = true
	s.stopLoop = cancel
	s.loopDone = done

	go s.run(ctx, ticks, stopTicker, done)
	s.log.Debug("auto-refresh started", zap.Duration("interval", s.interval))
}

// Stop disables auto-refresh and waits for the timer loop to exit. Once
// Stop returns no pass originates from the timer. A timer pass that was
// already running is canceled and its result discarded.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = false
	cancel, done := s.stopLoop, s.loopDone
	s.stopLoop, s.loopDone = nil, nil
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Debug("auto-refresh stopped")
}

// Close stops the scheduler for good (view teardown). A pass in flight is
// canceled and not installed, waiting refreshes return ErrClosed, and later
// triggers are no-ops.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.kill()
	s.Stop()
}

// TriggerOnce runs one pass now unless one is already in flight, in which
// case it returns false immediately without queuing anything.
func (s *Scheduler) TriggerOnce(ctx context.Context) bool {
	if s.isClosed() {
		return false
	}
	if !s.guard.TryAcquire(1) {
		s.metrics.RefreshTrigger(SourceManual, "dropped")
		s.log.Debug("manual refresh dropped; pass in flight")
		return false
	}
	defer s.guard.Release(1)
	if s.isClosed() {
		return false
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	return !errors.Is(s.pass(ctx, SourceManual), ErrClosed)
}

// Refresh waits for any in-flight pass to finish, then runs a fresh one.
// Used after mutations, whose effects an already-running pass may have
// missed.
func (s *Scheduler) Refresh(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	if err := s.guard.Acquire(ctx, 1); err != nil {
		if s.isClosed() {
			return ErrClosed
		}
		return err
	}
	defer s.guard.Release(1)
	if s.isClosed() {
		return ErrClosed
	}
	return s.pass(ctx, SourceMutation)
}

// State returns the current refresh state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Enabled:     s.enabled,
		Interval:    s.interval,
		LastRefresh: s.lastRefresh,
		InFlight:    s.inFlight.Load(),
	}
}

func (s *Scheduler) run(ctx context.Context, ticks <-chan time.Time, stopTicker func(), done chan struct{}) {
	defer close(done)
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			// A tick racing with Stop must not start a pass.
			if ctx.Err() != nil {
				return
			}
			if !s.guard.TryAcquire(1) {
				s.metrics.RefreshTrigger(SourceTimer, "dropped")
				s.log.Debug("refresh tick dropped; pass in flight")
				continue
			}
			s.pass(ctx, SourceTimer)
			s.guard.Release(1)
		}
	}
}

// bind derives a context that is also canceled by Close.
func (s *Scheduler) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// pass runs one load and installs the result. The caller holds the guard.
// It returns ErrClosed when Close ran before the result could be installed,
// and the context error when the pass was canceled.
func (s *Scheduler) pass(ctx context.Context, source string) error {
	s.inFlight.Store(true)
	defer s.inFlight.Store(false)
	s.metrics.RefreshTrigger(source, "started")

	snap := s.loader.Load(ctx)
	if err := ctx.Err(); err != nil {
		s.log.Debug("refresh pass abandoned", zap.String("source", source), zap.Error(err))
		if s.isClosed() {
			return ErrClosed
		}
		return err
	}

	// Installing under mu orders it against Close.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Debug("refresh pass discarded; scheduler closed", zap.String("source", source))
		return ErrClosed
	}
	installed := s.sink.ReplaceSnapshot(snap)
	if installed {
		s.lastRefresh = snap.Completed()
	}
	s.mu.Unlock()

	s.log.Debug("refresh pass finished",
		zap.String("source", source),
		zap.Bool("installed", installed),
		zap.Int("failed_resources", len(snap.Failed())))
	return nil
}

func (s *Scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
