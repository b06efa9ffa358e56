package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wanderhub/travelhub/internal/app/features/health"
	"github.com/wanderhub/travelhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context, *readpref.ReadPref) error { return f.err }

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

type healthBody struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	ConsoleSessions *int   `json:"console_sessions"`
	Message         string `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, body
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec, body := serve(t, health.NewHandler(db.Client(), nil, zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.ConsoleSessions != nil {
		t.Error("expected console_sessions to be omitted without a registry")
	}
}

func TestServe_ReportsConsoleSessions(t *testing.T) {
	rec, body := serve(t, health.NewHandler(fakePinger{}, fixedCount(3), zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body.ConsoleSessions == nil || *body.ConsoleSessions != 3 {
		t.Errorf("console_sessions: got %v, want 3", body.ConsoleSessions)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	rec, body := serve(t, health.NewHandler(fakePinger{err: errors.New("no reachable servers")}, fixedCount(1), zap.NewNop()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if body.Status != "error" || body.Database != "disconnected" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Message != "Database unavailable" {
		t.Errorf("message: got %q", body.Message)
	}
}
