// internal/app/console/state/filter.go
package state

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// StatusAll is the status filter value that matches every record.
const StatusAll = "all"

// Filter is the per-view predicate: a free-text search and a status
// value, combined with AND. Zero value matches everything.
type Filter struct {
	Search string `json:"search"`
	Status string `json:"status"`
}

// Normalize trims both fields and maps "all" to "".
func (f Filter) Normalize() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == StatusAll {
		f.Status = ""
	}
	return f
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	n := f.Normalize()
	return n.Search == "" && n.Status == ""
}

// Matches applies the filter to rec using spec's search and status fields.
// Search is case- and diacritic-insensitive substring matching over the
// searchable fields.
func (f Filter) Matches(spec resource.Spec, rec gateway.Record) bool {
	n := f.Normalize()
	if n.Status != "" {
		if spec.StatusField == "" || strings.ToLower(rec.Str(spec.StatusField)) != n.Status {
			return false
		}
	}
	if n.Search == "" {
		return true
	}
	needle := text.Fold(n.Search)
	for _, field := range spec.SearchFields {
		if strings.Contains(text.Fold(rec.Str(field)), needle) {
			return true
		}
	}
	return false
}
