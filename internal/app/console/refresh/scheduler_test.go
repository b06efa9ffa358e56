package refresh_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/console/refresh"
	"go.uber.org/zap"
)

// fakeLoader counts passes and tracks overlap. When gate is set, each pass
// blocks until a value is received.
type fakeLoader struct {
	passes     atomic.Int32
	running    atomic.Int32
	maxRunning atomic.Int32
	seq        atomic.Uint64
	gate       chan struct{}
	entered    chan struct{}
}

func (f *fakeLoader) Load(ctx context.Context) *loader.Snapshot {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		m := f.maxRunning.Load()
		if n <= m || f.maxRunning.CompareAndSwap(m, n) {
			break
		}
	}
	f.passes.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
		}
	}
	return loader.NewSnapshot(f.seq.Add(1), time.Now(), nil)
}

type sink struct {
	mu    sync.Mutex
	snaps []*loader.Snapshot
}

func (s *sink) ReplaceSnapshot(snap *loader.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return true
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) fn(time.Duration) (<-chan time.Time, func()) {
	m.stopped.Store(false)
	return m.ch, func() { m.stopped.Store(true) }
}

func TestTriggerOnce_RunsPass(t *testing.T) {
	l, sk := &fakeLoader{}, &sink{}
	s := refresh.New(l, sk, time.Minute, zap.NewNop())

	assert.True(t, s.TriggerOnce(context.Background()))
	assert.EqualValues(t, 1, l.passes.Load())
	assert.Equal(t, 1, sk.count())
	assert.False(t, s.State().LastRefresh.IsZero())
	assert.False(t, s.State().InFlight)
}

func TestTriggerOnce_DroppedWhileInFlight(t *testing.T) {
	l := &fakeLoader{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	sk := &sink{}
	s := refresh.New(l, sk, time.Minute, zap.NewNop())

	done := make(chan bool)
	go func() { done <- s.TriggerOnce(context.Background()) }()
	<-l.entered

	assert.True(t, s.State().InFlight)
	assert.False(t, s.TriggerOnce(context.Background()), "second manual trigger is dropped")

	close(l.gate)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, l.passes.Load())
	assert.EqualValues(t, 1, l.maxRunning.Load())
}

func TestRefresh_WaitsForInFlightPass(t *testing.T) {
	l := &fakeLoader{gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	sk := &sink{}
	s := refresh.New(l, sk, time.Minute, zap.NewNop())

	go s.TriggerOnce(context.Background())
	<-l.entered

	refreshed := make(chan error)
	go func() { refreshed <- s.Refresh(context.Background()) }()

	select {
	case <-refreshed:
		t.Fatal("refresh ran while a pass was in flight")
	case <-time.After(20 * time.Millisecond):
	}
	l.gate <- struct{}{}
	<-l.entered
	l.gate <- struct{}{}

	require.NoError(t, <-refreshed)
	assert.EqualValues(t, 2, l.passes.Load())
	assert.EqualValues(t, 1, l.maxRunning.Load(), "passes never overlap")
}

func TestTimer_TicksRunPassesAndStopIsFinal(t *testing.T) {
	l, sk := &fakeLoader{}, &sink{}
	tk := newManualTicker()
	s := refresh.New(l, sk, time.Second, zap.NewNop(), refresh.WithTicker(tk.fn))

	s.Start()
	s.Start() // no-op
	assert.True(t, s.State().Enabled)

	tk.ch <- time.Now()
	tk.ch <- time.Now() // blocks until the first tick's pass finished
	require.Eventually(t, func() bool { return l.passes.Load() == 2 }, time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.State().Enabled)
	assert.True(t, tk.stopped.Load())

	select {
	case tk.ch <- time.Now():
		t.Fatal("timer loop still receiving after Stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.EqualValues(t, 2, l.passes.Load())
}

func TestTimer_TickDroppedWhileManualPassInFlight(t *testing.T) {
	l := &fakeLoader{gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	sk := &sink{}
	tk := newManualTicker()
	s := refresh.New(l, sk, time.Second, zap.NewNop(), refresh.WithTicker(tk.fn))
	s.Start()
	defer s.Close()

	go s.TriggerOnce(context.Background())
	<-l.entered

	tk.ch <- time.Now() // dropped: guard held
	tk.ch <- time.Now() // loop is back waiting, so this one was handled too
	assert.EqualValues(t, 1, l.passes.Load())

	l.gate <- struct{}{}
	require.Eventually(t, func() bool { return !s.State().InFlight }, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, l.maxRunning.Load())
}

func TestStop_CancelsTimerPassAndDiscardsResult(t *testing.T) {
	l := &fakeLoader{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	sk := &sink{}
	tk := newManualTicker()
	s := refresh.New(l, sk, time.Second, zap.NewNop(), refresh.WithTicker(tk.fn))
	s.Start()

	tk.ch <- time.Now()
	<-l.entered
	s.Stop() // cancels the pass context; fake loader returns

	assert.Zero(t, sk.count(), "canceled pass is not installed")
	assert.False(t, s.State().InFlight)
}

func TestClose_RejectsLaterTriggers(t *testing.T) {
	l, sk := &fakeLoader{}, &sink{}
	tk := newManualTicker()
	s := refresh.New(l, sk, time.Second, zap.NewNop(), refresh.WithTicker(tk.fn))
	s.Start()
	s.Close()

	assert.False(t, s.State().Enabled)
	assert.False(t, s.TriggerOnce(context.Background()))
	assert.ErrorIs(t, s.Refresh(context.Background()), refresh.ErrClosed)
	s.Start()
	assert.False(t, s.State().Enabled, "closed scheduler cannot restart")
	assert.Zero(t, l.passes.Load())
}

func TestClose_WaitingRefreshNeverRuns(t *testing.T) {
	l := &fakeLoader{gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	sk := &sink{}
	s := refresh.New(l, sk, time.Second, zap.NewNop())

	triggered := make(chan bool)
	go func() { triggered <- s.TriggerOnce(context.Background()) }()
	<-l.entered

	refreshed := make(chan error)
	go func() { refreshed <- s.Refresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond) // Refresh is now waiting on the guard

	s.Close()
	close(l.gate)

	assert.ErrorIs(t, <-refreshed, refresh.ErrClosed)
	assert.False(t, <-triggered, "in-flight pass is canceled by Close")
	assert.EqualValues(t, 1, l.passes.Load(), "waiting refresh never starts a pass")
	assert.Zero(t, sk.count(), "nothing is installed after Close")
	assert.False(t, s.State().InFlight)
}

func TestRefresh_ContextCanceledWhileWaiting(t *testing.T) {
	l := &fakeLoader{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := refresh.New(l, &sink{}, time.Second, zap.NewNop())

	go s.TriggerOnce(context.Background())
	<-l.entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Refresh(ctx), context.DeadlineExceeded)
	close(l.gate)
}
