package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/campusbook/campus-booking-backend/internal/pkg/apperror"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrResourceNotFound = apperror.New(http.StatusNotFound, "resource not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrStartTimePast    = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrInvalidInput     = apperror.New(http.StatusBadRequest, "invalid input parameters")
	ErrCancelWindow     = apperror.New(http.StatusConflict, "too close to start time to cancel")
	ErrStoreUnavailable = apperror.New(http.StatusServiceUnavailable, "could not verify availability")
)

// Status is the closed set of booking lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string at the store/DTO boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Blocks reports whether a booking in this status represents an active
// reservation capable of conflicting with a new request. Rejected and
// cancelled bookings are inert history and never block.
func (s Status) Blocks() bool {
	return s == StatusPending || s == StatusApproved
}

// Booking is a time-bounded reservation request against a resource.
// StartTime and EndTime are absolute instants; the reserved interval is
// half-open: [StartTime, EndTime).
type Booking struct {
	ID           string
	ResourceID   string
	ResourceName string
	UserID       string
	UserName     string
	UserRole     user.Role
	Purpose      string
	Attendees    int
	StartTime    time.Time
	EndTime      time.Time
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID     string
	ResourceID string
	Status     string
	StartTime  *time.Time // Filter bookings ending after this time
	EndTime    *time.Time // Filter bookings starting before this time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// TimeSlot is a free interval within a resource's opening hours.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
