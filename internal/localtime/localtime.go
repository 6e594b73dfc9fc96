// Package localtime is the single conversion boundary between user-entered
// wall-clock date/time pairs and absolute instants. All local-time math in
// the application goes through here so that the calendar day a user meant
// never shifts across a timezone boundary between input, storage and display.
package localtime

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInput = errors.New("invalid date or time input")

const (
	dayLayout      = "2006-01-02"
	clockLayout    = "15:04"
	clockSecLayout = "15:04:05"
)

// NewInstant interprets a "YYYY-MM-DD" date and a "HH:MM" (or "HH:MM:SS")
// time as wall-clock time in loc and returns the corresponding instant.
// A nil loc means the server's local timezone.
func NewInstant(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	layout := dayLayout + " " + clockLayout
	if len(timeStr) == len(clockSecLayout) {
		layout = dayLayout + " " + clockSecLayout
	}

	t, err := time.ParseInLocation(layout, dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return t, nil
}

// DayKey returns the "YYYY-MM-DD" calendar date the instant falls on in loc.
// It round-trips with NewInstant: DayKey(NewInstant(d, tm, loc), loc) == d.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// FormatTime renders an instant as a local wall-clock time, e.g. "9:30 AM".
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("3:04 PM")
}

// FormatDateTime renders an instant as a local date and time for display.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("Jan 2, 2006 3:04 PM")
}

// LoadLocation resolves an IANA timezone name, falling back to def when the
// name is empty. Unknown names fail with ErrInvalidInput.
func LoadLocation(name string, def *time.Location) (*time.Location, error) {
	if name == "" {
		if def != nil {
			return def, nil
		}
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, name)
	}
	return loc, nil
}
