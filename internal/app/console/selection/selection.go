// internal/app/console/selection/selection.go

// Package selection tracks the record ids an operator has checked in one
// filtered view. A Set is not safe for concurrent use; its owner (the
// console state store) serializes access.
package selection

import (
	"slices"

	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Set is a selection scoped to one (resource, filtered view) pair.
type Set struct {
	resource resource.Name
	ids      map[string]struct{}
	order    []string
}

// New returns an empty selection bound to name.
func New(name resource.Name) *Set {
	return &Set{resource: name, ids: map[string]struct{}{}}
}

// Resource is the resource the selection belongs to.
func (s *Set) Resource() resource.Name { return s.resource }

// Toggle flips id and reports whether it is now selected.
func (s *Set) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// SelectAll replaces the selection with exactly visibleIDs.
func (s *Set) SelectAll(visibleIDs []string) {
	s.DeselectAll()
	for _, id := range visibleIDs {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

func (s *Set) DeselectAll() {
	clear(s.ids)
	s.order = s.order[:0]
}

func (s *Set) IsSelected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Count() int { return len(s.ids) }

// IDs returns the selected ids in selection order.
func (s *Set) IDs() []string {
	return slices.Clone(s.order)
}

// Retain drops every selected id not in keep and returns how many were
// dropped.
func (s *Set) Retain(keep []string) int {
	allowed := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		allowed[id] = struct{}{}
	}
	before := len(s.order)
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		if _, ok := allowed[id]; ok {
			return false
		}
		delete(s.ids, id)
		return true
	})
	return before - len(s.order)
}
