package booking

import (
	"time"

	"github.com/campusbook/campus-booking-backend/internal/user"
)

// DefaultCancelWindow is how long before its start time a booking can still
// be cancelled.
const DefaultCancelWindow = 2 * time.Hour

// CanCancel reports whether the acting user may cancel the booking at the
// given moment. All three conditions must hold:
//
//  1. the booking is still active (not already cancelled or rejected),
//  2. more than window remains before the start time (strict: exactly the
//     window boundary is too late),
//  3. the actor owns the booking or is an admin.
func CanCancel(b *Booking, actorID string, actorRole user.Role, now time.Time, window time.Duration) bool {
	if b.Status == StatusCancelled || b.Status == StatusRejected {
		return false
	}
	if b.StartTime.Sub(now) <= window {
		return false
	}
	return b.UserID == actorID || actorRole.IsAdmin()
}
