package settings

import (
	"time"

	"github.com/matt20966/owner-schedule/pkg/schedule"
)

// Settings holds the local display preferences. They never leave this
// machine; the remote store is not involved.
type Settings struct {
	Timezone            string
	ExpandedOccurrences bool
}

func DefaultSettings() Settings {
	return Settings{
		Timezone:            "UTC",
		ExpandedOccurrences: false,
	}
}

// Location resolves the configured timezone. Falls back to UTC when the
// stored name no longer resolves on this system.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s Settings) Validate() error {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return &schedule.ValidationError{Field: "timezone", Reason: "unknown timezone name"}
	}
	return nil
}
