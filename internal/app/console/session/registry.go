// internal/app/console/session/registry.go
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wanderhub/travelhub/internal/app/console/bulk"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/inlineedit"
	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/console/refresh"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/console/state"
	"github.com/wanderhub/travelhub/internal/app/system/auditlog"
	"github.com/wanderhub/travelhub/internal/app/system/mailer"
	"github.com/wanderhub/travelhub/internal/app/system/metrics"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("console session not found")

// Config holds per-session engine settings.
type Config struct {
	DefaultView     resource.Name
	RefreshInterval time.Duration
	AutoRefresh     bool
	BulkConcurrency int
	BulkRatePerSec  float64
	MailtoMaxLength int
}

// Registry holds the open console sessions.
type Registry struct {
	gw      gateway.Gateway
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Console
	audit   *auditlog.Logger
	edits   *inlineedit.Controller
	now     func() time.Time
	ticker  refresh.TickerFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Registry.
type Option func(*Registry)

func WithMetrics(m *metrics.Console) Option {
	return func(r *Registry) { r.metrics = m }
}

func WithAudit(a *auditlog.Logger) Option {
	return func(r *Registry) { r.audit = a }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithTicker replaces the wall-clock ticker of every scheduler (tests).
func WithTicker(f refresh.TickerFunc) Option {
	return func(r *Registry) { r.ticker = f }
}

func NewRegistry(gw gateway.Gateway, cfg Config, logger *zap.Logger, opts ...Option) *Registry {
	if cfg.DefaultView == "" {
		cfg.DefaultView = resource.Bookings
	}
	r := &Registry{
		gw:       gw,
		cfg:      cfg,
		log:      logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, o := range opts {
		o(r)
	}
	r.edits = inlineedit.NewController(gw, logger,
		inlineedit.WithMetrics(r.metrics),
		inlineedit.WithAudit(r.audit))
	return r
}

// Open creates a session for actor and installs its first snapshot.
func (r *Registry) Open(ctx context.Context, actor auditlog.Actor) (*Session, error) {
	st, err := state.New(r.cfg.DefaultView)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := r.log.With(zap.String("console_session", id), zap.String("actor_id", actor.ID))

	ld := loader.New(r.gw, log, loader.WithMetrics(r.metrics))
	schedOpts := []refresh.Option{refresh.WithMetrics(r.metrics)}
	if r.ticker != nil {
		schedOpts = append(schedOpts, refresh.WithTicker(r.ticker))
	}
	sched := refresh.New(ld, st, r.cfg.RefreshInterval, log, schedOpts...)
	exec := bulk.New(r.gw, sched, log,
		bulk.WithConcurrency(r.cfg.BulkConcurrency),
		bulk.WithRate(r.cfg.BulkRatePerSec),
		bulk.WithComposer(mailer.Mailto{MaxLength: r.cfg.MailtoMaxLength}),
		bulk.WithMetrics(r.metrics),
		bulk.WithAudit(r.audit))

	s := &Session{
		id:        id,
		actor:     actor,
		state:     st,
		refresh:   sched,
		bulk:      exec,
		edits:     r.edits,
		log:       log,
		openEdits: make(map[string]*inlineedit.Session),
	}
	s.touch(r.now())

	if err := sched.Refresh(ctx); err != nil {
		sched.Close()
		return nil, err
	}
	if r.cfg.AutoRefresh && r.cfg.RefreshInterval > 0 {
		sched.Start()
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.metrics.SessionOpened()
	log.Info("console session opened")
	return s, nil
}

// Get returns a session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Close tears a session down. It reports whether the session existed.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.teardown(s, "closed")
	return true
}

// CloseIdle tears down sessions unused for longer than threshold and
// returns how many it closed.
func (r *Registry) CloseIdle(threshold time.Duration) int {
	cutoff := r.now().Add(-threshold)
	var idle []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.teardown(s, "idle")
	}
	return len(idle)
}

// CloseAll tears every session down (shutdown).
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		r.teardown(s, "shutdown")
	}
	return len(all)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) teardown(s *Session, reason string) {
	if s.close() {
		r.metrics.SessionClosed()
		s.log.Info("console session closed", zap.String("reason", reason))
	}
}
