package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned bookings keyed by resource ID.
type fakeSource struct {
	bookings map[string][]*Booking
	err      error
}

func (f *fakeSource) FetchBookingsForResource(_ context.Context, resourceID string) ([]*Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bookings[resourceID], nil
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint", at(9, 0), at(10, 0), at(11, 0), at(12, 0), false},
		{"abutting, a ends when b starts", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"abutting, b ends when a starts", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"partial overlap", at(9, 0), at(10, 30), at(10, 0), at(11, 0), true},
		{"a contains b", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"b contains a", at(10, 0), at(11, 0), at(9, 0), at(12, 0), true},
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric in the two intervals.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestConflictChecker_Check(t *testing.T) {
	ctx := context.Background()

	source := &fakeSource{bookings: map[string][]*Booking{
		"room-a": {
			{ID: "b1", StartTime: at(9, 0), EndTime: at(10, 0), Status: StatusApproved},
			{ID: "b2", StartTime: at(10, 0), EndTime: at(11, 0), Status: StatusPending},
			{ID: "b3", StartTime: at(11, 0), EndTime: at(12, 0), Status: StatusCancelled},
			{ID: "b4", StartTime: at(11, 0), EndTime: at(12, 0), Status: StatusRejected},
		},
		"room-b": {
			{ID: "b5", StartTime: at(9, 0), EndTime: at(17, 0), Status: StatusApproved},
		},
	}}
	checker := NewConflictChecker(source)

	t.Run("free slot has no conflicts", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-a", at(13, 0), at(14, 0))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("abutting an existing booking is allowed", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-a", at(12, 0), at(13, 0))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("approved booking blocks", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-a", at(9, 30), at(9, 45))
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "b1", conflicts[0].ID)
	})

	t.Run("pending booking blocks too", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-a", at(10, 30), at(10, 45))
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "b2", conflicts[0].ID)
	})

	t.Run("cancelled and rejected bookings never block", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-a", at(11, 0), at(12, 0))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("bookings on another resource never block", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-b", at(13, 0), at(14, 0))
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "b5", conflicts[0].ID)

		conflicts, err = checker.Check(ctx, "room-c", at(13, 0), at(14, 0))
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("conflicts come back ordered by start time", func(t *testing.T) {
		conflicts, err := checker.Check(ctx, "room-a", at(8, 0), at(18, 0))
		require.NoError(t, err)
		require.Len(t, conflicts, 2)
		assert.Equal(t, "b1", conflicts[0].ID)
		assert.Equal(t, "b2", conflicts[1].ID)
	})

	t.Run("empty resource ID is rejected", func(t *testing.T) {
		_, err := checker.Check(ctx, "", at(9, 0), at(10, 0))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero and negative length intervals are rejected", func(t *testing.T) {
		_, err := checker.Check(ctx, "room-a", at(9, 0), at(9, 0))
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		_, err = checker.Check(ctx, "room-a", at(10, 0), at(9, 0))
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}

func TestConflictChecker_StoreFailure(t *testing.T) {
	checker := NewConflictChecker(&fakeSource{err: errors.New("connection refused")})

	conflicts, err := checker.Check(context.Background(), "room-a", at(9, 0), at(10, 0))

	// A failed fetch must surface as an error, never as "no conflicts".
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, conflicts)
}

func TestConflictChecker_CheckExcluding(t *testing.T) {
	source := &fakeSource{bookings: map[string][]*Booking{
		"room-a": {
			{ID: "b1", StartTime: at(9, 0), EndTime: at(10, 0), Status: StatusPending},
			{ID: "b2", StartTime: at(9, 30), EndTime: at(10, 30), Status: StatusApproved},
		},
	}}
	checker := NewConflictChecker(source)

	conflicts, err := checker.CheckExcluding(context.Background(), "room-a", at(9, 0), at(10, 0), "b1")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "b2", conflicts[0].ID)
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Conflicts: []*Booking{{ID: "b1"}}}

	assert.ErrorIs(t, err, ErrTimeConflict)

	var conflictErr *ConflictError
	require.ErrorAs(t, error(err), &conflictErr)
	assert.Len(t, conflictErr.Conflicts, 1)
}
