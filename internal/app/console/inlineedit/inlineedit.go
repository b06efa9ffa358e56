// internal/app/console/inlineedit/inlineedit.go

// Package inlineedit runs single-field edit sessions.
//
// A session moves idle → editing → validating → saving → idle on success.
// Validation runs locally before any gateway call; a rejected draft keeps
// the session in editing with a message. A failed save moves the session to
// error and keeps the draft so the operator can resubmit without retyping.
// Cancel discards the draft.
package inlineedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/system/auditlog"
	"github.com/wanderhub/travelhub/internal/app/system/metrics"
	"github.com/wanderhub/travelhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// State of an edit session.
type State string

const (
	StateIdle       State = "idle"
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSaving     State = "saving"
	StateError      State = "error"
)

var (
	// ErrInvalid is returned by Submit when the draft fails validation.
	ErrInvalid = errors.New("draft rejected by validation")
	// ErrBusy is returned when a submit is already running.
	ErrBusy = errors.New("edit session is busy")
	// ErrClosed is returned for sessions that saved or were canceled.
	ErrClosed = errors.New("edit session closed")
	// ErrNotEditable is returned by Begin for fields the resource does not
	// allow editing inline.
	ErrNotEditable = errors.New("field is not editable")
)

// FieldRef addresses one field of one record.
type FieldRef struct {
	Resource resource.Name `json:"resource"`
	ID       string        `json:"id"`
	Field    string        `json:"field"`
}

func (f FieldRef) String() string {
	return fmt.Sprintf("%s/%s.%s", f.Resource, f.ID, f.Field)
}

// Controller opens edit sessions against a gateway.
type Controller struct {
	gw      gateway.Gateway
	rules   Rules
	log     *zap.Logger
	metrics *metrics.Console
	audit   *auditlog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRules replaces DefaultRules.
func WithRules(r Rules) Option {
	return func(c *Controller) { c.rules = r }
}

func WithMetrics(m *metrics.Console) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithAudit(a *auditlog.Logger) Option {
	return func(c *Controller) { c.audit = a }
}

func NewController(gw gateway.Gateway, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		gw:    gw,
		rules: DefaultRules(),
		log:   logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Begin opens a session on ref with the value currently shown. The draft
// starts equal to original.
func (c *Controller) Begin(ref FieldRef, original string) (*Session, error) {
	spec, ok := resource.Lookup(ref.Resource)
	if !ok {
		return nil, gateway.NewError(gateway.KindNotFound, ref.Resource, resource.OpUpdate, ref.ID, fmt.Errorf("unknown resource"))
	}
	if ref.ID == "" || !spec.Supports(resource.OpUpdate) || !spec.CanEdit(ref.Field) {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, ref)
	}
	return &Session{
		id:       uuid.NewString(),
		ctrl:     c,
		ref:      ref,
		rule:     c.rules.For(ref.Resource, ref.Field),
		original: original,
		draft:    original,
		state:    StateEditing,
	}, nil
}

// Session is one field edit. It is safe for concurrent use.
type Session struct {
	id   string
	ctrl *Controller
	ref  FieldRef
	rule Rule

	mu       sync.Mutex
	original string
	draft    string
	state    State
	message  string
}

// View is a point-in-time copy of a session.
type View struct {
	ID       string   `json:"id"`
	Ref      FieldRef `json:"ref"`
	State    State    `json:"state"`
	Original string   `json:"original"`
	Draft    string   `json:"draft"`
	Error    string   `json:"error,omitempty"`
}

func (s *Session) ID() string { return s.id }

func (s *Session) Ref() FieldRef { return s.ref }

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:       s.id,
		Ref:      s.ref,
		State:    s.state,
		Original: s.original,
		Draft:    s.draft,
		Error:    s.message,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetDraft replaces the draft. A session in error returns to editing.
func (s *Session) SetDraft(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEditing, StateError:
		s.draft = v
		s.state = StateEditing
		s.message = ""
		return nil
	case StateIdle:
		return ErrClosed
	}
	return ErrBusy
}

// Cancel discards the draft and closes the session.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateValidating, StateSaving:
		return ErrBusy
	case StateIdle:
		return ErrClosed
	}
	s.draft = s.original
	s.state = StateIdle
	s.message = ""
	return nil
}

// Submit validates the draft and, if it passes, saves it. On success the
// session closes and the updated record is returned; the caller refreshes
// or patches its view. A validation failure returns ErrInvalid without any
// gateway call. A save failure leaves the session in error with the draft
// intact and returns the gateway error.
func (s *Session) Submit(ctx context.Context) (gateway.Record, error) {
	c := s.ctrl

	s.mu.Lock()
	switch s.state {
	case StateEditing, StateError:
	case StateIdle:
		s.mu.Unlock()
		return nil, ErrClosed
	default:
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.state = StateValidating
	draft := s.draft
	if s.rule.Validate != nil {
		if msg := s.rule.Validate(draft); msg != "" {
			s.state = StateEditing
			s.message = msg
			s.mu.Unlock()
			c.metrics.InlineEdit(string(s.ref.Resource), "invalid")
			return nil, fmt.Errorf("%w: %s", ErrInvalid, msg)
		}
	}
	s.state = StateSaving
	s.message = ""
	s.mu.Unlock()

	var value any = strings.TrimSpace(draft)
	if s.rule.Convert != nil {
		value = s.rule.Convert(draft)
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Mutate())
	defer cancel()
	rec, err := c.gw.Update(ctx, s.ref.Resource, s.ref.ID, gateway.Patch{s.ref.Field: value})
	c.audit.FieldEdited(ctx, string(s.ref.Resource), s.ref.ID, s.ref.Field, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.message = gateway.Message(err)
		c.metrics.InlineEdit(string(s.ref.Resource), "failed")
		c.log.Warn("inline edit save failed",
			zap.String("edit_id", s.id),
			zap.String("field", s.ref.String()),
			zap.String("kind", string(gateway.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	s.state = StateIdle
	s.original = rec.Str(s.ref.Field)
	s.draft = s.original
	c.metrics.InlineEdit(string(s.ref.Resource), "saved")
	return rec, nil
}
