// internal/app/console/loader/loader.go

// Package loader fetches every console resource in parallel and assembles
// the results into one Snapshot. A failed resource degrades to an empty
// sequence; the pass as a whole never fails.
package loader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/system/metrics"
	"github.com/wanderhub/travelhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader runs aggregate passes against a gateway.
type Loader struct {
	gw      gateway.Gateway
	names   []resource.Name
	log     *zap.Logger
	metrics *metrics.Console
	now     func() time.Time

	seq atomic.Uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithMetrics records pass and failure counts.
func WithMetrics(m *metrics.Console) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithResources restricts the pass to names. Snapshots still carry an
// (empty) entry for every registered resource.
func WithResources(names ...resource.Name) Option {
	return func(l *Loader) { l.names = names }
}

// New returns a loader over every registered resource.
func New(gw gateway.Gateway, logger *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		gw:    gw,
		names: resource.Names(),
		log:   logger,
		now:   time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load issues one fetch per resource concurrently, waits for all of them
// to settle, and returns the assembled snapshot. Every call is a full
// re-fetch.
func (l *Loader) Load(ctx context.Context) *Snapshot {
	seq := l.seq.Add(1)
	started := l.now()

	type result struct {
		recs []gateway.Record
		err  error
	}
	results := make([]result, len(l.names))

	var g errgroup.Group
	for i, name := range l.names {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, timeouts.Fetch())
			defer cancel()
			recs, err := l.gw.Fetch(fctx, name)
			results[i] = result{recs: recs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	snap := &Snapshot{
		seq:     seq,
		started: started,
		data:    make(map[resource.Name][]gateway.Record, len(resource.Names())),
		errs:    map[resource.Name]error{},
	}
	for _, name := range resource.Names() {
		snap.data[name] = []gateway.Record{}
	}
	for i, name := range l.names {
		r := results[i]
		if r.err != nil {
			snap.errs[name] = r.err
			l.metrics.FetchFailed(string(name), string(gateway.KindOf(r.err)))
			l.log.Warn("console fetch failed; using empty data",
				zap.String("resource", string(name)),
				zap.Uint64("pass", seq),
				zap.Error(r.err))
			continue
		}
		if r.recs != nil {
			snap.data[name] = r.recs
		}
	}
	snap.completed = l.now()

	took := snap.completed.Sub(started)
	l.metrics.ObserveLoad(took)
	l.log.Debug("console snapshot loaded",
		zap.Uint64("pass", seq),
		zap.Int("failed", len(snap.errs)),
		zap.Duration("took", took))

	return snap
}
