// internal/app/console/state/store.go

// Package state is the console's single source of truth for one operator:
// the installed snapshot, the active view, per-view filters, and the
// selection bound to the active view.
//
// The invariants live here rather than in handlers:
//   - a selection only ever contains ids visible in the active view
//   - changing the active view, or the active view's filter, clears it
//   - installing a snapshot keeps views and filters and drops selected ids
//     that are no longer visible
//   - a snapshot older than the installed one is ignored
package state

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/console/selection"
)

var ErrUnknownView = errors.New("unknown console view")

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	snap          *loader.Snapshot
	lastRefreshed time.Time

	active  resource.Name
	filters map[resource.Name]Filter
	sel     *selection.Set
}

// New returns a store showing view with an empty snapshot installed.
func New(view resource.Name) (*Store, error) {
	if _, ok := resource.Lookup(view); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	return &Store{
		snap:    loader.NewSnapshot(0, time.Time{}, nil),
		active:  view,
		filters: map[resource.Name]Filter{},
		sel:     selection.New(view),
	}, nil
}

// ReplaceSnapshot installs snap unless a newer one is already installed.
// It reports whether snap was installed.
func (s *Store) ReplaceSnapshot(snap *loader.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap == nil || snap.Seq() < s.snap.Seq() {
		return false
	}
	s.snap = snap
	s.lastRefreshed = snap.Completed()
	s.sel.Retain(s.visibleIDsLocked(s.active))
	return true
}

// Snapshot returns the installed snapshot.
func (s *Store) Snapshot() *loader.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// LastRefreshed is the completion time of the installed snapshot (zero
// before the first pass).
func (s *Store) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

func (s *Store) ActiveView() resource.Name {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActiveView switches tabs. Switching to a different view clears the
// selection.
func (s *Store) SetActiveView(v resource.Name) error {
	if _, ok := resource.Lookup(v); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == s.active {
		return nil
	}
	s.active = v
	s.sel = selection.New(v)
	return nil
}

// Filter returns the filter of view v.
func (s *Store) Filter(v resource.Name) Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters[v]
}

// SetFilter replaces the predicate of view v. When v is the active view
// and the predicate changed, the selection is cleared.
func (s *Store) SetFilter(v resource.Name, f Filter) error {
	if _, ok := resource.Lookup(v); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	f = f.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filters[v] == f {
		return nil
	}
	s.filters[v] = f
	if v == s.active {
		s.sel.DeselectAll()
	}
	return nil
}

// VisibleRecords is filter(predicate(v), snapshot[v]) sorted newest first.
func (s *Store) VisibleRecords(v resource.Name) []gateway.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleLocked(v)
}

// VisibleIDs returns the ids of VisibleRecords(v).
func (s *Store) VisibleIDs(v resource.Name) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleIDsLocked(v)
}

// Overview summarizes the installed snapshot.
func (s *Store) Overview() Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return overviewOf(s.snap)
}

func (s *Store) visibleLocked(v resource.Name) []gateway.Record {
	spec, ok := resource.Lookup(v)
	if !ok {
		return nil
	}
	f := s.filters[v]
	out := []gateway.Record{}
	for _, r := range s.snap.Records(v) {
		if f.Matches(spec, r) {
			out = append(out, r)
		}
	}
	sortRecords(spec, out)
	return out
}

func (s *Store) visibleIDsLocked(v resource.Name) []string {
	recs := s.visibleLocked(v)
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID()
	}
	return ids
}

// sortRecords orders newest first on spec.SortField; ties and records
// without a timestamp fall back to id order.
func sortRecords(spec resource.Spec, recs []gateway.Record) {
	slices.SortStableFunc(recs, func(a, b gateway.Record) int {
		at, aok := a.Time(spec.SortField)
		bt, bok := b.Time(spec.SortField)
		switch {
		case aok && bok && !at.Equal(bt):
			return bt.Compare(at)
		case aok && !bok:
			return -1
		case !aok && bok:
			return 1
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}
