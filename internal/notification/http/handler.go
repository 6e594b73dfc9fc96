package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/campus-booking-backend/internal/auth"
	"github.com/campusbook/campus-booking-backend/internal/notification"
	"github.com/campusbook/campus-booking-backend/internal/pkg/request"
	"github.com/campusbook/campus-booking-backend/internal/pkg/response"
)

type Handler struct {
	service        notification.Service
	vapidPublicKey string
}

func NewHandler(service notification.Service, vapidPublicKey string) *Handler {
	return &Handler{
		service:        service,
		vapidPublicKey: vapidPublicKey,
	}
}

// List returns the authenticated user's notification inbox.
func (h *Handler) List(c *gin.Context) {
	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	filter := notification.Filter{
		UnreadOnly: req.UnreadOnly,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	notifications, total, err := h.service.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		items[i] = NewNotificationResponse(n)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

// MarkRead marks one of the user's notifications as read.
func (h *Handler) MarkRead(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	userID := auth.GetUserID(c)
	if err := h.service.MarkRead(c.Request.Context(), uriReq.ID, userID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Subscribe registers the caller's browser push subscription.
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	sub := &notification.PushSubscription{
		UserID:   auth.GetUserID(c),
		Endpoint: req.Endpoint,
		P256DH:   req.Keys.P256DH,
		Auth:     req.Keys.Auth,
	}

	if err := h.service.Subscribe(c.Request.Context(), sub); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// VAPIDKey returns the public key clients need to subscribe.
func (h *Handler) VAPIDKey(c *gin.Context) {
	if h.vapidPublicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are not enabled"})
		return
	}
	c.JSON(http.StatusOK, VAPIDKeyResponse{PublicKey: h.vapidPublicKey})
}
