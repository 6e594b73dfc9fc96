package http

import (
	"time"

	"github.com/campusbook/campus-booking-backend/internal/notification"
	"github.com/campusbook/campus-booking-backend/internal/pkg/request"
)

// ListNotificationsRequest defines query parameters for the inbox listing.
type ListNotificationsRequest struct {
	request.ListParams
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse is the shape of a notification in API responses.
type NotificationResponse struct {
	ID        string     `json:"id"`
	BookingID string     `json:"booking_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		BookingID: n.BookingID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// SubscribeRequest registers a browser push subscription, mirroring the
// PushSubscription JSON produced by the Push API.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256DH string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// VAPIDKeyResponse exposes the server's public VAPID key to clients.
type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}
