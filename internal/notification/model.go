package notification

import (
	"net/http"
	"time"

	"github.com/campusbook/campus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "notification not found")
	ErrInvalidKind   = apperror.New(http.StatusBadRequest, "invalid notification kind")
	ErrTitleRequired = apperror.New(http.StatusBadRequest, "title is required")
	ErrBadSub        = apperror.New(http.StatusBadRequest, "invalid push subscription")
)

// Kind identifies what a notification is about.
type Kind string

const (
	KindBookingApproved  Kind = "booking_approved"
	KindBookingRejected  Kind = "booking_rejected"
	KindBookingCancelled Kind = "booking_cancelled"
)

// ParseKind validates a kind string at the store boundary.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBookingApproved, KindBookingRejected, KindBookingCancelled:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// Notification is a per-user record about a booking decision.
type Notification struct {
	ID        string
	UserID    string
	BookingID string
	Kind      Kind
	Title     string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Filter defines parameters for listing a user's notifications.
type Filter struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

// PushSubscription is a browser push endpoint registered by a user.
type PushSubscription struct {
	UserID    string
	Endpoint  string
	P256DH    string
	Auth      string
	CreatedAt time.Time
}
