package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/campus-booking-backend/internal/auth"
	"github.com/campusbook/campus-booking-backend/internal/booking"
	"github.com/campusbook/campus-booking-backend/internal/localtime"
	"github.com/campusbook/campus-booking-backend/internal/pkg/request"
	"github.com/campusbook/campus-booking-backend/internal/pkg/response"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

const (
	calendarMaxDays  = 62
	calendarPageSize = 200
)

type Handler struct {
	service    booking.Service
	defaultLoc *time.Location
}

func NewHandler(service booking.Service, defaultLoc *time.Location) *Handler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Handler{service: service, defaultLoc: defaultLoc}
}

func actorRole(c *gin.Context) user.Role {
	role, err := user.ParseRole(auth.GetUserRole(c))
	if err != nil {
		return ""
	}
	return role
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	start, end, err := req.Interval(h.defaultLoc)
	if err != nil {
		if errors.Is(err, localtime.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:     auth.GetUserID(c),
		ResourceID: req.ResourceID,
		Purpose:    req.Purpose,
		Attendees:  req.Attendees,
		StartTime:  start,
		EndTime:    end,
	})
	if err != nil {
		var conflictErr *booking.ConflictError
		if errors.As(err, &conflictErr) {
			c.JSON(http.StatusConflict, NewConflictResponse(conflictErr.Conflicts))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uriReq.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Bookings are visible to their owner and to admins only.
	if b.UserID != auth.GetUserID(c) && !actorRole(c).IsAdmin() {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := booking.Filter{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Status:     req.Status,
		StartTime:  req.StartTimeFrom,
		EndTime:    req.StartTimeTo,
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}

	// Non-admins only ever see their own bookings, whatever they ask for.
	if !actorRole(c).IsAdmin() {
		filter.UserID = auth.GetUserID(c)
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

// CheckConflicts answers "could I book this?" without writing anything. The
// answer is advisory; the create path re-checks under a lock.
func (h *Handler) CheckConflicts(c *gin.Context) {
	var req CheckConflictsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	start, end, err := req.Interval(h.defaultLoc)
	if err != nil {
		if errors.Is(err, localtime.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		response.Error(c, err)
		return
	}

	conflicts, err := h.service.CheckConflicts(c.Request.Context(), req.ResourceID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := NewConflictResponse(conflicts)
	c.JSON(http.StatusOK, CheckConflictsResponse{
		Available: len(conflicts) == 0,
		Conflicts: resp.Conflicts,
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uriReq.ID, auth.GetUserID(c), actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, id string, actorRole user.Role) (*booking.Booking, error)) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := fn(c.Request.Context(), uriReq.ID, actorRole(c))
	if err != nil {
		var conflictErr *booking.ConflictError
		if errors.As(err, &conflictErr) {
			c.JSON(http.StatusConflict, NewConflictResponse(conflictErr.Conflicts))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Availability(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	loc, err := localtime.LoadLocation(req.Timezone, h.defaultLoc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := localtime.NewInstant(req.Date, "00:00", loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := h.service.ResourceDay(c.Request.Context(), uriReq.ID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(day.Bookings))
	for i, b := range day.Bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		ResourceID: day.ResourceID,
		Date:       day.Date,
		FreeSlots:  day.FreeSlots,
		Bookings:   items,
	})
}

// listWindow pages through every booking matching the filter. A busy
// two-month window can hold more rows than a single page, so it keeps
// fetching until the reported total is reached.
func listWindow(ctx context.Context, svc booking.Service, filter booking.Filter) ([]*booking.Booking, error) {
	filter.PageSize = calendarPageSize
	var all []*booking.Booking
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := svc.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func (h *Handler) Calendar(c *gin.Context) {
	var req CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	loc, err := localtime.LoadLocation(req.Timezone, h.defaultLoc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := localtime.NewInstant(req.From, "00:00", loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := localtime.NewInstant(req.To, "00:00", loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The window is inclusive of the "to" day.
	to = to.AddDate(0, 0, 1)
	if !from.Before(to) || to.Sub(from) > calendarMaxDays*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calendar window"})
		return
	}

	filter := booking.Filter{
		StartTime: &from,
		EndTime:   &to,
		SortBy:    "start_time",
		SortOrder: "ASC",
	}
	if !actorRole(c).IsAdmin() {
		filter.UserID = auth.GetUserID(c)
	}

	bookings, err := listWindow(c.Request.Context(), h.service, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	days := make(map[string][]BookingResponse)
	for _, b := range bookings {
		key := localtime.DayKey(b.StartTime, loc)
		days[key] = append(days[key], NewBookingResponse(b))
	}

	c.JSON(http.StatusOK, CalendarResponse{
		Timezone: loc.String(),
		Days:     days,
	})
}
