package booking

import (
	"fmt"
	"sort"
	"time"
)

// CalculateAvailability returns the free slots of a resource on the given
// calendar day, between the opening hours openStr and closeStr (wall-clock
// "HH:MM" or "HH:MM:SS", interpreted in date's location). Bookings whose
// status does not block are ignored; blocking bookings are clamped to the
// opening window and subtracted from it.
func CalculateAvailability(date time.Time, openStr, closeStr string, bookings []*Booking) ([]TimeSlot, error) {
	open, err := clockOnDay(date, openStr)
	if err != nil {
		return nil, fmt.Errorf("invalid opening time %q: %w", openStr, err)
	}
	close_, err := clockOnDay(date, closeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid closing time %q: %w", closeStr, err)
	}
	if !close_.After(open) {
		return nil, fmt.Errorf("closing time %q is not after opening time %q", closeStr, openStr)
	}

	// Collect blocking intervals clamped to the opening window.
	var busy []TimeSlot
	for _, b := range bookings {
		if !b.Status.Blocks() {
			continue
		}
		start, end := b.StartTime, b.EndTime
		if start.Before(open) {
			start = open
		}
		if end.After(close_) {
			end = close_
		}
		if !end.After(start) {
			continue
		}
		busy = append(busy, TimeSlot{StartTime: start, EndTime: end})
	}

	sort.Slice(busy, func(i, j int) bool {
		return busy[i].StartTime.Before(busy[j].StartTime)
	})

	// Sweep the window, emitting the gaps between busy intervals.
	slots := []TimeSlot{}
	cursor := open
	for _, b := range busy {
		if b.StartTime.After(cursor) {
			slots = append(slots, TimeSlot{StartTime: cursor, EndTime: b.StartTime})
		}
		if b.EndTime.After(cursor) {
			cursor = b.EndTime
		}
	}
	if close_.After(cursor) {
		slots = append(slots, TimeSlot{StartTime: cursor, EndTime: close_})
	}

	return slots, nil
}

// clockOnDay anchors a wall-clock string onto the calendar day of date,
// keeping date's location.
func clockOnDay(date time.Time, clock string) (time.Time, error) {
	layout := "15:04"
	if len(clock) == len("15:04:05") {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
}
