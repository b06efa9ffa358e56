// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/wanderhub/travelhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for console mutations (deletes, status changes,
	// inline edits, composed emails).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Actor identifies the operator behind a console action.
type Actor struct {
	ID   string
	Name string
}

type actorKey struct{}

// WithActor returns a context carrying the acting operator.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the operator stored by WithActor, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case only the
// "log" destination is honored.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource))
	}
	if event.RecordID != "" {
		fields = append(fields, zap.String("record_id", event.RecordID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// The actor is taken from ctx when the event does not name one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	if event.Category == audit.CategoryAdmin {
		setting = l.config.Admin
	}
	if setting == "off" {
		return
	}

	if event.ActorID == "" {
		if a, ok := ActorFrom(ctx); ok {
			event.ActorID, event.ActorName = a.ID, a.Name
		}
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Console Events ---

// RecordDeleted logs a delete of one record, successful or not.
func (l *Logger) RecordDeleted(ctx context.Context, resource, recordID string, err error) {
	l.Log(ctx, admin(audit.EventRecordDeleted, resource, recordID, err, nil))
}

// StatusChanged logs a status transition of one record.
func (l *Logger) StatusChanged(ctx context.Context, resource, recordID, status string, err error) {
	l.Log(ctx, admin(audit.EventStatusChanged, resource, recordID, err, map[string]string{
		"status": status,
	}))
}

// FieldEdited logs an inline edit of a single field.
func (l *Logger) FieldEdited(ctx context.Context, resource, recordID, field string, err error) {
	l.Log(ctx, admin(audit.EventFieldEdited, resource, recordID, err, map[string]string{
		"field": field,
	}))
}

// EmailComposed logs a compose-email handoff.
func (l *Logger) EmailComposed(ctx context.Context, resource string, recipients, batches int) {
	l.Log(ctx, admin(audit.EventEmailComposed, resource, "", nil, map[string]string{
		"recipients": strconv.Itoa(recipients),
		"batches":    strconv.Itoa(batches),
	}))
}

// BulkCompleted logs the summary of a bulk operation.
func (l *Logger) BulkCompleted(ctx context.Context, resource, op string, succeeded, failed int) {
	e := admin(audit.EventBulkCompleted, resource, "", nil, map[string]string{
		"op":        op,
		"succeeded": strconv.Itoa(succeeded),
		"failed":    strconv.Itoa(failed),
	})
	e.Success = failed == 0
	if !e.Success {
		e.FailureReason = "partial failure"
	}
	l.Log(ctx, e)
}

func admin(eventType, resource, recordID string, err error, details map[string]string) audit.Event {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		Resource:  resource,
		RecordID:  recordID,
		Success:   err == nil,
		Details:   details,
	}
	if err != nil {
		e.FailureReason = err.Error()
	}
	return e
}
