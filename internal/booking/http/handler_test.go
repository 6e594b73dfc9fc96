package http

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/campus-booking-backend/internal/booking"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

// pagingService serves a fixed slice through List one page at a time. The
// other Service methods are not part of what these tests exercise.
type pagingService struct {
	bookings []*booking.Booking
	listErr  error
	calls    int
}

func (s *pagingService) List(_ context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	s.calls++
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	total := len(s.bookings)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return s.bookings[start:end], total, nil
}

func (s *pagingService) Create(context.Context, booking.CreateRequest) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *pagingService) GetByID(context.Context, string) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *pagingService) CheckConflicts(context.Context, string, time.Time, time.Time) ([]*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *pagingService) Approve(context.Context, string, user.Role) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *pagingService) Reject(context.Context, string, user.Role) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *pagingService) Cancel(context.Context, string, string, user.Role) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *pagingService) ResourceDay(context.Context, string, time.Time) (*booking.DaySchedule, error) {
	return nil, errors.New("not implemented")
}

var _ booking.Service = (*pagingService)(nil)

func TestListWindowFetchesEveryPage(t *testing.T) {
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	count := calendarPageSize*2 + 17
	svc := &pagingService{}
	for i := 0; i < count; i++ {
		svc.bookings = append(svc.bookings, &booking.Booking{
			ID:        fmt.Sprintf("b-%03d", i),
			StartTime: base.Add(time.Duration(i) * time.Hour),
			EndTime:   base.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			Status:    booking.StatusApproved,
		})
	}

	got, err := listWindow(context.Background(), svc, booking.Filter{})

	require.NoError(t, err)
	assert.Len(t, got, count, "a window larger than one page must not be truncated")
	assert.Equal(t, 3, svc.calls)
	// Order of the underlying result survives paging.
	assert.Equal(t, svc.bookings[0].ID, got[0].ID)
	assert.Equal(t, svc.bookings[count-1].ID, got[count-1].ID)
}

func TestListWindowEmpty(t *testing.T) {
	svc := &pagingService{}

	got, err := listWindow(context.Background(), svc, booking.Filter{})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, svc.calls)
}

func TestListWindowPropagatesError(t *testing.T) {
	svc := &pagingService{listErr: errors.New("connection reset")}

	_, err := listWindow(context.Background(), svc, booking.Filter{})

	assert.Error(t, err)
}
