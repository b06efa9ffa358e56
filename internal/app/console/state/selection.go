// internal/app/console/state/selection.go
package state

import (
	"slices"

	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Toggle flips id in the active view's selection. Ids that are not
// currently visible are ignored. It reports whether id is now selected.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.visibleIDsLocked(s.active), id) {
		return false
	}
	return s.sel.Toggle(id)
}

// SelectAll selects exactly the visible records of the active view and
// returns how many are selected.
func (s *Store) SelectAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SelectAll(s.visibleIDsLocked(s.active))
	return s.sel.Count()
}

func (s *Store) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.DeselectAll()
}

func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel.IsSelected(id)
}

func (s *Store) SelectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel.Count()
}

// Selection returns the selection's resource and ids in selection order.
func (s *Store) Selection() (resource.Name, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel.Resource(), s.sel.IDs()
}

// SelectedRecords resolves the selection against the installed snapshot.
func (s *Store) SelectedRecords() []gateway.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedRecordsLocked()
}

// SelectionValid reports whether every selected id is visible in the
// active view. It holds after every Store operation.
func (s *Store) SelectionValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionValidLocked()
}

// BulkTarget is the selection resolved against one snapshot.
type BulkTarget struct {
	Resource resource.Name
	IDs      []string
	Records  []gateway.Record
	// Valid is false when a selected id is no longer visible in the
	// active view.
	Valid bool
}

// BulkTarget reads the selection, its records and its validity under one
// lock, so a concurrent ReplaceSnapshot cannot split them.
func (s *Store) BulkTarget() BulkTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BulkTarget{
		Resource: s.sel.Resource(),
		IDs:      s.sel.IDs(),
		Records:  s.selectedRecordsLocked(),
		Valid:    s.selectionValidLocked(),
	}
}

func (s *Store) selectedRecordsLocked() []gateway.Record {
	out := make([]gateway.Record, 0, s.sel.Count())
	for _, id := range s.sel.IDs() {
		if r, ok := s.snap.Lookup(s.sel.Resource(), id); ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) selectionValidLocked() bool {
	visible := s.visibleIDsLocked(s.active)
	for _, id := range s.sel.IDs() {
		if !slices.Contains(visible, id) {
			return false
		}
	}
	return s.sel.Resource() == s.active
}
