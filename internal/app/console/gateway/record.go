// internal/app/console/gateway/record.go
package gateway

import (
	"fmt"
	"maps"
	"time"
)

// Record is an opaque console row. The console only reads its "id" plus
// the fields its resource spec names for filtering, sorting and contact.
type Record map[string]any

// Patch is a set of field assignments for an update.
type Patch map[string]any

// IDField is the key every Record carries its identifier under.
const IDField = "id"

// ID returns the record identifier.
func (r Record) ID() string {
	return r.Str(IDField)
}

// Str returns field formatted as a string ("" when absent).
func (r Record) Str(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Time returns field as a time when it holds one.
func (r Record) Time(field string) (time.Time, bool) {
	t, ok := r[field].(time.Time)
	return t, ok
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	return maps.Clone(r)
}
