package gateway_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
)

func TestRecord_Str(t *testing.T) {
	ts := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	r := gateway.Record{"id": "x1", "n": 3, "when": ts, "nil": nil}

	assert.Equal(t, "x1", r.ID())
	assert.Equal(t, "3", r.Str("n"))
	assert.Equal(t, "2026-05-01T09:30:00Z", r.Str("when"))
	assert.Empty(t, r.Str("nil"))
	assert.Empty(t, r.Str("missing"))

	got, ok := r.Time("when")
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))
	_, ok = r.Time("n")
	assert.False(t, ok)
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := gateway.Record{"id": "x1", "status": "pending"}
	c := r.Clone()
	c["status"] = "confirmed"
	assert.Equal(t, "pending", r["status"])
}
