package schedule

import (
	"fmt"
	"regexp"
	"strconv"
)

// The store serializes durations as ISO 8601 time designators ("PT1H30M").
// Only the time part is ever produced by the backend, so date designators are
// rejected here rather than silently misread.
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// FormatDuration renders a minute count as an ISO 8601 duration string.
// Zero formats as "PT0M" to keep the field present on the wire.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "PT0M"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("PT%dH%dM", h, m)
	case h > 0:
		return fmt.Sprintf("PT%dH", h)
	default:
		return fmt.Sprintf("PT%dM", m)
	}
}

// ParseDuration reads an ISO 8601 time duration into whole minutes.
// Seconds are accepted and truncated; the store never emits sub-minute
// precision for schedule rows.
func ParseDuration(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	match := isoDurationPattern.FindStringSubmatch(s)
	if match == nil || (match[1] == "" && match[2] == "" && match[3] == "") {
		return 0, &ValidationError{Field: "duration", Reason: fmt.Sprintf("not an ISO 8601 time duration: %q", s)}
	}
	var total int
	if match[1] != "" {
		h, _ := strconv.Atoi(match[1])
		total += h * 60
	}
	if match[2] != "" {
		m, _ := strconv.Atoi(match[2])
		total += m
	}
	if match[3] != "" {
		sec, _ := strconv.Atoi(match[3])
		total += sec / 60
	}
	return total, nil
}

// The store's wire format has no true "forever" marker: unbounded recurrence
// is encoded as 999 base units, multiplied by 7 when the base unit is a week.
// Kept verbatim for backend compatibility.
const unboundedBaseUnits = 999

// UnboundedTotal returns the sentinel frequency_total encoding unbounded
// recurrence for the given frequency.
func UnboundedTotal(f Frequency) int {
	if f == FrequencyWeekly || f == FrequencyFortnightly {
		return unboundedBaseUnits * 7
	}
	return unboundedBaseUnits
}

// Unbounded reports whether a frequency_total carries the unbounded sentinel.
func Unbounded(f Frequency, total int) bool {
	return total >= UnboundedTotal(f)
}
