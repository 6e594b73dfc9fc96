package http

import (
	"time"

	"github.com/campusbook/campus-booking-backend/internal/booking"
	"github.com/campusbook/campus-booking-backend/internal/localtime"
	"github.com/campusbook/campus-booking-backend/internal/pkg/request"
	resHttp "github.com/campusbook/campus-booking-backend/internal/resource/http"
	userHttp "github.com/campusbook/campus-booking-backend/internal/user/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	ResourceID    string     `form:"resource_id" binding:"omitempty,uuid"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	UserID        string     `form:"user_id" binding:"omitempty,uuid"`
	StartTimeFrom *time.Time `form:"start_time_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTimeTo   *time.Time `form:"start_time_to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy        string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at status"`
	SortOrder     string     `form:"sort_order" binding:"omitempty,oneof=ASC DESC"`
}

// BookingResponse is the shape of booking data returned by the API.
type BookingResponse struct {
	ID        string              `json:"id"`
	Resource  resHttp.ResourceTag `json:"resource"`
	User      userHttp.UserTag    `json:"user"`
	Purpose   string              `json:"purpose"`
	Attendees int                 `json:"attendees"`
	StartTime time.Time           `json:"start_time"`
	EndTime   time.Time           `json:"end_time"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Resource:  resHttp.ResourceTag{ID: b.ResourceID, Name: b.ResourceName},
		User:      userHttp.UserTag{ID: b.UserID, Name: b.UserName, Role: string(b.UserRole)},
		Purpose:   b.Purpose,
		Attendees: b.Attendees,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ConflictingBooking is the per-conflict detail in a 409 response.
type ConflictingBooking struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

// ConflictResponse is the 409 body listing every colliding booking so the
// client can show the user exactly what is in the way.
type ConflictResponse struct {
	Error     string               `json:"error"`
	Conflicts []ConflictingBooking `json:"conflicts"`
}

func NewConflictResponse(conflicts []*booking.Booking) ConflictResponse {
	items := make([]ConflictingBooking, len(conflicts))
	for i, b := range conflicts {
		items[i] = ConflictingBooking{
			ID:        b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Status:    string(b.Status),
		}
	}
	return ConflictResponse{
		Error:     booking.ErrTimeConflict.Message,
		Conflicts: items,
	}
}

// CreateBookingRequest accepts the interval either as absolute RFC3339
// instants or as local wall-clock form input (date + start + end, with an
// optional IANA timezone). Mixing the two styles is rejected.
type CreateBookingRequest struct {
	ResourceID string `json:"resource_id" binding:"required,uuid"`
	Purpose    string `json:"purpose" binding:"omitempty,max=500"`
	Attendees  int    `json:"attendees" binding:"omitempty,min=1"`

	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	Date     string `json:"date" binding:"omitempty"`
	Start    string `json:"start" binding:"omitempty"`
	End      string `json:"end" binding:"omitempty"`
	Timezone string `json:"tz" binding:"omitempty"`
}

// Interval resolves the request into absolute instants, using defaultLoc
// when the local form carries no timezone.
func (r *CreateBookingRequest) Interval(defaultLoc *time.Location) (start, end time.Time, err error) {
	usesInstants := r.StartTime != nil || r.EndTime != nil
	usesLocal := r.Date != "" || r.Start != "" || r.End != "" || r.Timezone != ""

	if usesInstants {
		if usesLocal || r.StartTime == nil || r.EndTime == nil {
			return time.Time{}, time.Time{}, booking.ErrInvalidInput
		}
		return *r.StartTime, *r.EndTime, nil
	}

	if r.Date == "" || r.Start == "" || r.End == "" {
		return time.Time{}, time.Time{}, booking.ErrInvalidInput
	}

	loc, err := localtime.LoadLocation(r.Timezone, defaultLoc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err = localtime.NewInstant(r.Date, r.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = localtime.NewInstant(r.Date, r.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// CheckConflictsRequest is the dry-run form of CreateBookingRequest: same
// interval styles, no write.
type CheckConflictsRequest struct {
	ResourceID string `form:"resource_id" binding:"required,uuid"`

	StartTime *time.Time `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   *time.Time `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`

	Date     string `form:"date"`
	Start    string `form:"start"`
	End      string `form:"end"`
	Timezone string `form:"tz"`
}

func (r *CheckConflictsRequest) Interval(defaultLoc *time.Location) (time.Time, time.Time, error) {
	req := CreateBookingRequest{
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Date:      r.Date,
		Start:     r.Start,
		End:       r.End,
		Timezone:  r.Timezone,
	}
	return req.Interval(defaultLoc)
}

// CheckConflictsResponse reports what a booking attempt would collide with.
type CheckConflictsResponse struct {
	Available bool                 `json:"available"`
	Conflicts []ConflictingBooking `json:"conflicts"`
}

// AvailabilityRequest selects the day and viewer timezone for a resource's
// free/busy schedule.
type AvailabilityRequest struct {
	Date     string `form:"date" binding:"required"`
	Timezone string `form:"tz" binding:"omitempty"`
}

// AvailabilityResponse is a resource's schedule for one calendar day.
type AvailabilityResponse struct {
	ResourceID string             `json:"resource_id"`
	Date       string             `json:"date"`
	FreeSlots  []booking.TimeSlot `json:"free_slots"`
	Bookings   []BookingResponse  `json:"bookings"`
}

// CalendarRequest selects the window and viewer timezone for the day-bucketed
// booking calendar.
type CalendarRequest struct {
	From     string `form:"from" binding:"required"`
	To       string `form:"to" binding:"required"`
	Timezone string `form:"tz" binding:"omitempty"`
}

// CalendarResponse groups bookings by the calendar day they start on, in the
// viewer's timezone.
type CalendarResponse struct {
	Timezone string                       `json:"timezone"`
	Days     map[string][]BookingResponse `json:"days"`
}
