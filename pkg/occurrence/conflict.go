package occurrence

// MarkConflicts flags every occurrence whose half-open interval [start, end)
// overlaps at least one other's. Touching endpoints never conflict.
// Pairwise comparison is fine at display-window sizes.
func MarkConflicts(occs []Occurrence) {
	for i := range occs {
		occs[i].HasConflict = false
	}
	for i := 0; i < len(occs); i++ {
		for j := i + 1; j < len(occs); j++ {
			if overlaps(occs[i], occs[j]) {
				occs[i].HasConflict = true
				occs[j].HasConflict = true
			}
		}
	}
}

func overlaps(a, b Occurrence) bool {
	return a.Event.Start.Before(b.End) && b.Event.Start.Before(a.End)
}
