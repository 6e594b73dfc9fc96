package booking

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Source is the store capability the conflict checker depends on. It is
// injected rather than reached for globally so the checker can be exercised
// against a fake store in tests.
type Source interface {
	// FetchBookingsForResource returns all bookings (any status) referencing
	// the resource, in no particular order.
	FetchBookingsForResource(ctx context.Context, resourceID string) ([]*Booking, error)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Abutting intervals (one ends exactly when the
// other starts) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictChecker decides whether a candidate interval would collide with an
// existing blocking booking on the same resource.
//
// The check is advisory: it runs before the write, not inside it. The
// authoritative guard against two concurrent creates is the locked re-check
// in Repository.Create; this checker exists to tell the caller exactly which
// bookings collide.
type ConflictChecker struct {
	source Source
}

func NewConflictChecker(source Source) *ConflictChecker {
	return &ConflictChecker{source: source}
}

// Check returns the existing blocking bookings on resourceID that overlap
// [start, end), ordered by start time. An empty result means the interval is
// safe to book. A fetch failure is returned as an error wrapping
// ErrStoreUnavailable and must never be treated as "no conflict".
func (c *ConflictChecker) Check(ctx context.Context, resourceID string, start, end time.Time) ([]*Booking, error) {
	return c.CheckExcluding(ctx, resourceID, start, end, "")
}

// CheckExcluding is Check with one booking ignored, used when re-validating
// an existing booking against its competitors.
func (c *ConflictChecker) CheckExcluding(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) ([]*Booking, error) {
	if resourceID == "" {
		return nil, ErrInvalidInput
	}
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	bookings, err := c.source.FetchBookingsForResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var conflicts []*Booking
	for _, b := range bookings {
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if !b.Status.Blocks() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			conflicts = append(conflicts, b)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime.Before(conflicts[j].StartTime)
	})

	return conflicts, nil
}

// ConflictError carries the colliding bookings so callers can surface each
// conflicting interval and its status. It matches ErrTimeConflict under
// errors.Is.
type ConflictError struct {
	Conflicts []*Booking
}

func (e *ConflictError) Error() string {
	return ErrTimeConflict.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrTimeConflict
}
