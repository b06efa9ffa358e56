// internal/app/console/session/session.go

// Package session wires the console engine together for one operator.
//
// A Session owns its state store, its refresh scheduler, its bulk executor
// and its open inline edits. The Registry hands sessions out by id and
// tears idle ones down, which stops their schedulers so no refresh fires
// after the operator has gone.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/bulk"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/inlineedit"
	"github.com/wanderhub/travelhub/internal/app/console/refresh"
	"github.com/wanderhub/travelhub/internal/app/console/state"
	"github.com/wanderhub/travelhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

var (
	ErrEditNotFound   = errors.New("edit session not found")
	ErrStaleSelection = errors.New("selection no longer matches the visible records; reselect and retry")
)

// Session is one operator's console.
type Session struct {
	id    string
	actor auditlog.Actor

	state   *state.Store
	refresh *refresh.Scheduler
	bulk    *bulk.Executor
	edits   *inlineedit.Controller
	log     *zap.Logger

	lastSeen atomic.Int64 // unix nanos

	mu        sync.Mutex
	openEdits map[string]*inlineedit.Session
	closed    bool
}

func (s *Session) ID() string { return s.id }

func (s *Session) Actor() auditlog.Actor { return s.actor }

func (s *Session) State() *state.Store { return s.state }

func (s *Session) Scheduler() *refresh.Scheduler { return s.refresh }

// Context returns ctx carrying the session's operator for audit events.
func (s *Session) Context(ctx context.Context) context.Context {
	return auditlog.WithActor(ctx, s.actor)
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen is the last time the session was used.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// RunBulk applies op to the current selection. The selection is kept;
// after a mutation it has already been pruned to ids that still exist.
// A selection that no longer matches the visible records is refused with
// ErrStaleSelection and nothing is sent to the gateway.
func (s *Session) RunBulk(ctx context.Context, op bulk.Operation) (bulk.Result, error) {
	t := s.state.BulkTarget()
	if !t.Valid {
		s.log.Warn("bulk refused; stale selection",
			zap.String("session_id", s.id),
			zap.String("resource", string(t.Resource)),
			zap.Int("selected", len(t.IDs)))
		return bulk.Result{}, ErrStaleSelection
	}
	return s.bulk.Execute(s.Context(ctx), bulk.Request{
		Resource: t.Resource,
		IDs:      t.IDs,
		Records:  t.Records,
		Op:       op,
	})
}

// BeginEdit opens an inline edit on a record in the installed snapshot.
func (s *Session) BeginEdit(ref inlineedit.FieldRef) (*inlineedit.Session, error) {
	rec, ok := s.state.Snapshot().Lookup(ref.Resource, ref.ID)
	if !ok {
		return nil, gateway.NewError(gateway.KindNotFound, ref.Resource, "", ref.ID, fmt.Errorf("not in snapshot"))
	}
	e, err := s.edits.Begin(ref, rec.Str(ref.Field))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openEdits[e.ID()] = e
	return e, nil
}

// Edit returns an open edit by id.
func (s *Session) Edit(id string) (*inlineedit.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.openEdits[id]
	if !ok {
		return nil, ErrEditNotFound
	}
	return e, nil
}

// SubmitEdit submits an open edit. A saved edit is forgotten and a refresh
// is requested so the visible value reflects the server. A failed refresh
// is logged; the edit itself succeeded.
func (s *Session) SubmitEdit(ctx context.Context, id string) (inlineedit.View, error) {
	e, err := s.Edit(id)
	if err != nil {
		return inlineedit.View{}, err
	}
	ctx = s.Context(ctx)
	if _, err := e.Submit(ctx); err != nil {
		return e.View(), err
	}
	s.forget(id)
	if err := s.refresh.Refresh(ctx); err != nil {
		s.log.Warn("refresh after edit failed", zap.String("edit_id", id), zap.Error(err))
	}
	return e.View(), nil
}

// CancelEdit discards an open edit.
func (s *Session) CancelEdit(id string) error {
	e, err := s.Edit(id)
	if err != nil {
		return err
	}
	if err := e.Cancel(); err != nil {
		return err
	}
	s.forget(id)
	return nil
}

func (s *Session) forget(id string) {
	s.mu.Lock()
	delete(s.openEdits, id)
	s.mu.Unlock()
}

// close stops the scheduler and drops open edits. It is idempotent.
func (s *Session) close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.openEdits = map[string]*inlineedit.Session{}
	s.mu.Unlock()

	s.refresh.Close()
	return true
}
