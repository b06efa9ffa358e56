package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/wanderhub/travelhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_OverridesOnlyPositive(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Fetch: 20 * time.Second, Mutate: -1})

	if got := timeouts.Fetch(); got != 20*time.Second {
		t.Errorf("Fetch() = %v, want 20s", got)
	}
	if got := timeouts.Mutate(); got != timeouts.DefaultMutate {
		t.Errorf("Mutate() = %v, want default", got)
	}
	if got := timeouts.Current().Ping; got != timeouts.DefaultPing {
		t.Errorf("Ping = %v, want default", got)
	}

	timeouts.Reset()
	if got := timeouts.Fetch(); got != timeouts.DefaultFetch {
		t.Errorf("Fetch() after Reset = %v, want default", got)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "bulk delete")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if op := logs.All()[0].ContextMap()["operation"]; op != "bulk delete" {
		t.Errorf("operation = %v", op)
	}
}

func TestWithTimeout_QuietWhenFinishedInTime(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := timeouts.WithTimeout(context.Background(), time.Minute, zap.New(core), "fetch")
	cancel()
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
