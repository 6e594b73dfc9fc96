package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/campus-booking-backend/internal/booking"
	"github.com/campusbook/campus-booking-backend/internal/localtime"
)

func TestCreateBookingRequestInterval(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*3600)

	t.Run("absolute instants pass through", func(t *testing.T) {
		start := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
		end := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
		req := CreateBookingRequest{StartTime: &start, EndTime: &end}

		gotStart, gotEnd, err := req.Interval(taipei)
		require.NoError(t, err)
		assert.True(t, gotStart.Equal(start))
		assert.True(t, gotEnd.Equal(end))
	})

	t.Run("local form uses the default location", func(t *testing.T) {
		req := CreateBookingRequest{Date: "2026-03-10", Start: "10:00", End: "11:30"}

		gotStart, gotEnd, err := req.Interval(taipei)
		require.NoError(t, err)
		assert.True(t, gotStart.Equal(time.Date(2026, 3, 10, 10, 0, 0, 0, taipei)))
		assert.True(t, gotEnd.Equal(time.Date(2026, 3, 10, 11, 30, 0, 0, taipei)))
	})

	t.Run("explicit timezone wins over the default", func(t *testing.T) {
		req := CreateBookingRequest{Date: "2026-03-10", Start: "10:00", End: "11:00", Timezone: "UTC"}

		gotStart, _, err := req.Interval(taipei)
		require.NoError(t, err)
		assert.True(t, gotStart.Equal(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	})

	t.Run("mixing styles is rejected", func(t *testing.T) {
		start := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
		end := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
		req := CreateBookingRequest{StartTime: &start, EndTime: &end, Date: "2026-03-10"}

		_, _, err := req.Interval(taipei)
		assert.ErrorIs(t, err, booking.ErrInvalidInput)
	})

	t.Run("incomplete forms are rejected", func(t *testing.T) {
		start := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)

		for _, req := range []CreateBookingRequest{
			{},
			{StartTime: &start},
			{Date: "2026-03-10", Start: "10:00"},
			{Start: "10:00", End: "11:00"},
		} {
			_, _, err := req.Interval(taipei)
			assert.ErrorIs(t, err, booking.ErrInvalidInput)
		}
	})

	t.Run("bad wall-clock input", func(t *testing.T) {
		req := CreateBookingRequest{Date: "2026-03-10", Start: "25:99", End: "11:00"}
		_, _, err := req.Interval(taipei)
		assert.ErrorIs(t, err, localtime.ErrInvalidInput)

		req = CreateBookingRequest{Date: "2026-03-10", Start: "10:00", End: "11:00", Timezone: "Not/AZone"}
		_, _, err = req.Interval(taipei)
		assert.ErrorIs(t, err, localtime.ErrInvalidInput)
	})
}
