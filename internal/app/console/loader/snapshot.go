// internal/app/console/loader/snapshot.go
package loader

import (
	"slices"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Snapshot is one consistent capture of every registered resource.
//
// A Snapshot is immutable once built. Every registered resource has an
// entry; a resource whose fetch failed holds an empty sequence and its
// error is kept for diagnostics.
type Snapshot struct {
	seq       uint64
	started   time.Time
	completed time.Time
	data      map[resource.Name][]gateway.Record
	errs      map[resource.Name]error
}

// NewSnapshot assembles a snapshot from data. Resources missing from data
// get an empty sequence.
func NewSnapshot(seq uint64, completed time.Time, data map[resource.Name][]gateway.Record) *Snapshot {
	s := &Snapshot{
		seq:       seq,
		started:   completed,
		completed: completed,
		data:      make(map[resource.Name][]gateway.Record, len(data)),
		errs:      map[resource.Name]error{},
	}
	for _, name := range resource.Names() {
		recs := data[name]
		if recs == nil {
			recs = []gateway.Record{}
		}
		s.data[name] = recs
	}
	return s
}

// Seq orders snapshots: a higher sequence was started later.
func (s *Snapshot) Seq() uint64 { return s.seq }

// Completed is when the last fetch of the pass settled.
func (s *Snapshot) Completed() time.Time { return s.completed }

// Started is when the pass was issued.
func (s *Snapshot) Started() time.Time { return s.started }

// Records returns the records of name in source order. The returned slice
// is a copy; the records themselves must be treated as read-only.
func (s *Snapshot) Records(name resource.Name) []gateway.Record {
	return slices.Clone(s.data[name])
}

// Len returns how many records name holds.
func (s *Snapshot) Len(name resource.Name) int {
	return len(s.data[name])
}

// Has reports whether name has an entry (always true for registered resources).
func (s *Snapshot) Has(name resource.Name) bool {
	_, ok := s.data[name]
	return ok
}

// Lookup finds a record by id.
func (s *Snapshot) Lookup(name resource.Name, id string) (gateway.Record, bool) {
	for _, r := range s.data[name] {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Err returns the fetch error of name for this pass, if any.
func (s *Snapshot) Err(name resource.Name) error {
	return s.errs[name]
}

// Failed lists resources whose fetch failed, in registry order.
func (s *Snapshot) Failed() []resource.Name {
	var out []resource.Name
	for _, name := range resource.Names() {
		if s.errs[name] != nil {
			out = append(out, name)
		}
	}
	return out
}
