// internal/app/console/state/overview.go
package state

import (
	"strings"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Overview is the dashboard summary of one snapshot: totals per resource
// and per-status breakdowns for resources with a status lifecycle.
type Overview struct {
	Totals    map[resource.Name]int            `json:"totals"`
	ByStatus  map[resource.Name]map[string]int `json:"by_status"`
	Failed    []resource.Name                  `json:"failed,omitempty"`
	Completed time.Time                        `json:"completed"`
}

func overviewOf(snap *loader.Snapshot) Overview {
	ov := Overview{
		Totals:    map[resource.Name]int{},
		ByStatus:  map[resource.Name]map[string]int{},
		Failed:    snap.Failed(),
		Completed: snap.Completed(),
	}
	for _, spec := range resource.All() {
		recs := snap.Records(spec.Name)
		ov.Totals[spec.Name] = len(recs)
		if spec.StatusField == "" {
			continue
		}
		counts := make(map[string]int, len(spec.StatusValues))
		for _, v := range spec.StatusValues {
			counts[v] = 0
		}
		for _, r := range recs {
			if v := strings.ToLower(r.Str(spec.StatusField)); v != "" {
				counts[v]++
			}
		}
		ov.ByStatus[spec.Name] = counts
	}
	return ov
}
