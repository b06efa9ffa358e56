// internal/app/features/console/handler.go
package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wanderhub/travelhub/internal/app/console/bulk"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/inlineedit"
	"github.com/wanderhub/travelhub/internal/app/console/refresh"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/console/session"
	"github.com/wanderhub/travelhub/internal/app/console/state"
	"github.com/wanderhub/travelhub/internal/app/system/auditlog"
	"github.com/wanderhub/travelhub/internal/app/system/auth"
	"github.com/wanderhub/travelhub/internal/app/system/mailer"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const maxBodyBytes = 1 << 20

// Handler serves the operator console JSON API.
type Handler struct {
	Sessions   *session.Registry
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	// opens coalesces concurrent session opens for the same user.
	opens singleflight.Group
}

// NewHandler constructs a console Handler.
func NewHandler(sessions *session.Registry, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, SessionMgr: sm, Log: logger}
}

type ctxKey struct{}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(ctxKey{}).(*session.Session)
	return s
}

// WithSession binds a console session to the request. The session id lives
// in the cookie; a missing, expired or foreign id opens a new session.
func (h *Handler) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.CurrentUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		s, err := h.Sessions.Get(h.SessionMgr.ConsoleSessionID(r))
		if err != nil || s.Actor().ID != u.ID {
			s, err = h.open(r.Context(), auditlog.Actor{ID: u.ID, Name: u.Name})
			if err != nil {
				h.Log.Error("open console session", zap.String("user_id", u.ID), zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "console unavailable")
				return
			}
			if err := h.SessionMgr.SetConsoleSessionID(w, r, s.ID()); err != nil {
				h.Log.Warn("save console session cookie", zap.Error(err))
			}
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, s)
		next.ServeHTTP(w, r.WithContext(s.Context(ctx)))
	})
}

// open starts a console session. Requests for the same user that arrive
// while an open is running share its session instead of each loading one.
func (h *Handler) open(ctx context.Context, actor auditlog.Actor) (*session.Session, error) {
	v, err, shared := h.opens.Do(actor.ID, func() (any, error) {
		return h.Sessions.Open(context.WithoutCancel(ctx), actor)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		h.Log.Debug("console session open shared", zap.String("user_id", actor.ID))
	}
	return v.(*session.Session), nil
}

type selectionView struct {
	Resource resource.Name `json:"resource"`
	IDs      []string      `json:"ids"`
	Count    int           `json:"count"`
}

type consoleView struct {
	SessionID     string           `json:"session_id"`
	View          resource.Name    `json:"view"`
	Filter        state.Filter     `json:"filter"`
	Records       []gateway.Record `json:"records"`
	Selection     selectionView    `json:"selection"`
	Overview      state.Overview   `json:"overview"`
	Refresh       refresh.State    `json:"refresh"`
	LastRefreshed time.Time        `json:"last_refreshed"`
	ViewError     string           `json:"view_error,omitempty"`
}

func viewOf(s *session.Session) consoleView {
	st := s.State()
	v := st.ActiveView()
	sel, ids := st.Selection()
	out := consoleView{
		SessionID:     s.ID(),
		View:          v,
		Filter:        st.Filter(v),
		Records:       st.VisibleRecords(v),
		Selection:     selectionView{Resource: sel, IDs: ids, Count: len(ids)},
		Overview:      st.Overview(),
		Refresh:       s.Scheduler().State(),
		LastRefreshed: st.LastRefreshed(),
	}
	if out.Records == nil {
		out.Records = []gateway.Record{}
	}
	if err := st.Snapshot().Err(v); err != nil {
		out.ViewError = gateway.Message(err)
	}
	return out
}

// Show returns the console state for the active view.
// GET /console
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(sessionFrom(r)))
}

// SetView switches the active view. The selection is cleared.
// POST /console/view
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var in struct {
		View resource.Name `json:"view"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	s := sessionFrom(r)
	if err := s.State().SetActiveView(in.View); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// SetFilter replaces the filter of a view, defaulting to the active one.
// POST /console/filter
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var in struct {
		View   resource.Name `json:"view"`
		Search string        `json:"search"`
		Status string        `json:"status"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	s := sessionFrom(r)
	if in.View == "" {
		in.View = s.State().ActiveView()
	}
	if err := s.State().SetFilter(in.View, state.Filter{Search: in.Search, Status: in.Status}); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// ToggleSelection flips one visible record in or out of the selection.
// POST /console/selection/toggle
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID string `json:"id"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	st := sessionFrom(r).State()
	selected := st.Toggle(in.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       in.ID,
		"selected": selected,
		"count":    st.SelectionCount(),
	})
}

// SelectAll selects every visible record in the active view.
// POST /console/selection/all
func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	n := sessionFrom(r).State().SelectAll()
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// SelectNone clears the selection.
// POST /console/selection/none
func (h *Handler) SelectNone(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).State().DeselectAll()
	writeJSON(w, http.StatusOK, map[string]int{"count": 0})
}

type bulkInput struct {
	Op      bulk.Kind `json:"op"`
	Value   string    `json:"value"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
}

// Bulk applies one operation to the current selection. Per-record failures
// are part of a 200 response.
// POST /console/bulk
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	var in bulkInput
	if !h.decode(w, r, &in) {
		return
	}
	op := bulk.Operation{Kind: in.Op, Value: in.Value, Subject: in.Subject, Body: in.Body}
	res, err := sessionFrom(r).RunBulk(r.Context(), op)
	if err != nil {
		// Compose failures still carry the per-record outcome.
		if errors.Is(err, mailer.ErrNoRecipients) ||
			errors.Is(err, mailer.ErrPayloadTooLarge) ||
			errors.Is(err, mailer.ErrRecipientTooLong) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "result": res})
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Refresh runs one pass now. A request that arrives while a pass is in
// flight is dropped.
// POST /console/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if !s.Scheduler().TriggerOnce(r.Context()) {
		writeJSON(w, http.StatusOK, map[string]any{"dropped": true, "refresh": s.Scheduler().State()})
		return
	}
	writeJSON(w, http.StatusAccepted, viewOf(s))
}

// AutoRefresh turns the periodic refresh on or off.
// POST /console/autorefresh
func (h *Handler) AutoRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Enabled bool `json:"enabled"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	sched := sessionFrom(r).Scheduler()
	if in.Enabled {
		sched.Start()
	} else {
		sched.Stop()
	}
	writeJSON(w, http.StatusOK, sched.State())
}

// BeginEdit opens an inline edit on one field.
// POST /console/edits
func (h *Handler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	var ref inlineedit.FieldRef
	if !h.decode(w, r, &ref) {
		return
	}
	e, err := sessionFrom(r).BeginEdit(ref)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e.View())
}

// UpdateDraft replaces the draft of an open edit.
// PUT /console/edits/{editID}
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Draft string `json:"draft"`
	}
	if !h.decode(w, r, &in) {
		return
	}
	e, err := sessionFrom(r).Edit(chi.URLParam(r, "editID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := e.SetDraft(in.Draft); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.View())
}

// SubmitEdit validates and saves an open edit. Rejected and failed edits
// return the edit view so the client can show the message next to the
// field.
// POST /console/edits/{editID}/submit
func (h *Handler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	v, err := sessionFrom(r).SubmitEdit(r.Context(), chi.URLParam(r, "editID"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, inlineedit.ErrInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, v)
	case v.ID != "" && v.State == inlineedit.StateError:
		writeJSON(w, statusFor(err), v)
	default:
		h.fail(w, err)
	}
}

// CancelEdit discards an open edit.
// DELETE /console/edits/{editID}
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r).CancelEdit(chi.URLParam(r, "editID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		h.Log.Warn("console request failed", zap.Error(err))
	}
	writeError(w, status, gateway.Message(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrEditNotFound), errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, inlineedit.ErrBusy),
		errors.Is(err, inlineedit.ErrClosed),
		errors.Is(err, session.ErrStaleSelection):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrNetwork), errors.Is(err, refresh.ErrClosed):
		return http.StatusBadGateway
	case errors.Is(err, state.ErrUnknownView),
		errors.Is(err, bulk.ErrEmptySelection),
		errors.Is(err, bulk.ErrUnknownOp),
		errors.Is(err, inlineedit.ErrNotEditable),
		errors.Is(err, gateway.ErrValidation),
		errors.Is(err, mailer.ErrPayloadTooLarge),
		errors.Is(err, mailer.ErrRecipientTooLong):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
