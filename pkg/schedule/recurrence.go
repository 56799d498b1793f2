package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Recurrence math is delegated to rrule-go; the store's frequency vocabulary
// maps onto plain RRULE options. every_work_day is weekly on MO-FR, matching
// the store's advance-and-skip-weekends behaviour.
func ruleFor(s Series) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Dtstart: s.Start.Truncate(time.Second),
		Count:   s.FrequencyTotal,
	}
	switch s.Frequency {
	case FrequencyDaily:
		opt.Freq = rrule.DAILY
	case FrequencyEveryWorkDay:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case FrequencyFortnightly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	default:
		return nil, fmt.Errorf("frequency %q has no recurrence rule", s.Frequency)
	}
	return rrule.NewRRule(opt)
}

// Occurrences lists the series' occurrence instants within [from, to).
func Occurrences(s Series, from, to time.Time) ([]time.Time, error) {
	if !s.Frequency.Recurring() {
		if !s.Start.Before(from) && s.Start.Before(to) {
			return []time.Time{s.Start}, nil
		}
		return nil, nil
	}
	r, err := ruleFor(s)
	if err != nil {
		return nil, err
	}
	// Between is inclusive on both ends; trim the upper bound to keep the
	// window half-open.
	var out []time.Time
	for _, t := range r.Between(from, to, true) {
		if t.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// OccurrencesBefore counts the series' occurrences strictly before the given
// instant, capped by the series total. A future-scope split shortens the
// original series to exactly this count.
func OccurrencesBefore(s Series, at time.Time) (int, error) {
	if !s.Frequency.Recurring() {
		if s.Start.Before(at) {
			return 1, nil
		}
		return 0, nil
	}
	r, err := ruleFor(s)
	if err != nil {
		return 0, err
	}
	count := 0
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok || !t.Before(at) {
			return count, nil
		}
		count++
	}
}

// SeriesEnd returns the instant of the series' final occurrence.
func SeriesEnd(s Series) (time.Time, error) {
	if !s.Frequency.Recurring() {
		return s.Start, nil
	}
	r, err := ruleFor(s)
	if err != nil {
		return time.Time{}, err
	}
	last := s.Start
	next := r.Iterator()
	for {
		t, ok := next()
		if !ok {
			return last, nil
		}
		last = t
	}
}
