package occurrence

import (
	"sort"
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
)

// Occurrence is one display-ready instance of an event within a window.
// It is a projection, never persisted.
type Occurrence struct {
	Event       schedule.Event
	End         time.Time
	HasConflict bool
}

// Materialize expands fetched rows into occurrences for the half-open window
// [from, to). The remote store already returns one row per materialized
// occurrence, so the collapsed mode (expanded=false) is purely a display
// collapse: only the first in-window row of each series is shown.
//
// Rules, in order:
//   - tombstone rows (deleted placeholders) never emit
//   - rows outside the window never emit
//   - rows with no series, or flagged as exceptions, always emit
//   - series rows emit once per series when collapsed, always when expanded
//
// Identical input and flag always yield identical output.
func Materialize(rows []schedule.Event, from, to time.Time, expanded bool) []Occurrence {
	sorted := make([]schedule.Event, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	seenSeries := make(map[string]bool)
	out := make([]Occurrence, 0, len(sorted))
	for _, row := range sorted {
		if row.Tombstone() {
			continue
		}
		if row.Start.Before(from) || !row.Start.Before(to) {
			continue
		}
		if row.Series != nil && !row.IsException && !expanded {
			if seenSeries[row.Series.ID] {
				continue
			}
			seenSeries[row.Series.ID] = true
		}
		out = append(out, Occurrence{Event: row, End: row.End()})
	}
	return out
}
