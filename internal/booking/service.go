package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/campusbook/campus-booking-backend/internal/localtime"
	"github.com/campusbook/campus-booking-backend/internal/notification"
	"github.com/campusbook/campus-booking-backend/internal/resource"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

type CreateRequest struct {
	UserID     string
	ResourceID string
	Purpose    string
	Attendees  int
	StartTime  time.Time
	EndTime    time.Time
}

// DaySchedule is one resource's calendar day: the free slots between its
// opening hours and the blocking bookings that occupy the rest.
type DaySchedule struct {
	ResourceID string
	Date       string // local "YYYY-MM-DD" day key
	FreeSlots  []TimeSlot
	Bookings   []*Booking
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// CheckConflicts runs the advisory conflict check for a candidate
	// interval without writing anything.
	CheckConflicts(ctx context.Context, resourceID string, start, end time.Time) ([]*Booking, error)

	Approve(ctx context.Context, id string, actorRole user.Role) (*Booking, error)
	Reject(ctx context.Context, id string, actorRole user.Role) (*Booking, error)
	Cancel(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error)

	// ResourceDay computes the free/busy schedule of a resource on the
	// calendar day containing date (in date's location).
	ResourceDay(ctx context.Context, resourceID string, date time.Time) (*DaySchedule, error)
}

type service struct {
	repo         Repository
	checker      *ConflictChecker
	resService   resource.Service
	notifService notification.Service
	cancelWindow time.Duration
	displayLoc   *time.Location
}

// NewService creates the booking service. notifService may be nil, in which
// case decision notifications are skipped. A zero cancelWindow falls back to
// DefaultCancelWindow.
func NewService(repo Repository, resService resource.Service, notifService notification.Service, cancelWindow time.Duration, displayLoc *time.Location) Service {
	if cancelWindow <= 0 {
		cancelWindow = DefaultCancelWindow
	}
	if displayLoc == nil {
		displayLoc = time.Local
	}
	return &service{
		repo:         repo,
		checker:      NewConflictChecker(repo),
		resService:   resService,
		notifService: notifService,
		cancelWindow: cancelWindow,
		displayLoc:   displayLoc,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// The user ID comes from the token subject, not from request binding, so
	// it is validated here.
	if _, err := uuid.Parse(req.UserID); err != nil {
		return nil, ErrInvalidInput
	}

	// 1. Validate time range
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	// Strict check: StartTime cannot be in the past
	if req.StartTime.Before(time.Now().UTC()) {
		return nil, ErrStartTimePast
	}

	// 2. Validate resource exists and is bookable
	res, err := s.resService.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if !res.IsActive {
		return nil, ErrResourceNotFound
	}

	// 3. Advisory conflict check: tells the caller exactly which bookings
	// collide. A failed check must refuse the booking, never pass it.
	conflicts, err := s.checker.Check(ctx, req.ResourceID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	// 4. Create. The repository re-checks under a per-resource lock, so a
	// race between two concurrent creates still cannot double-book.
	b := &Booking{
		ResourceID: req.ResourceID,
		UserID:     req.UserID,
		Purpose:    req.Purpose,
		Attendees:  req.Attendees,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     StatusPending, // Default status
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			// A competing booking won the slot between the advisory check
			// and the locked insert. Re-fetch so the refusal still names
			// the conflicting intervals.
			conflicts, checkErr := s.checker.Check(ctx, req.ResourceID, req.StartTime, req.EndTime)
			if checkErr != nil {
				return nil, &ConflictError{}
			}
			return nil, &ConflictError{Conflicts: conflicts}
		}
		return nil, err
	}

	b.ResourceName = res.Name
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) CheckConflicts(ctx context.Context, resourceID string, start, end time.Time) ([]*Booking, error) {
	return s.checker.Check(ctx, resourceID, start, end)
}

func (s *service) Approve(ctx context.Context, id string, actorRole user.Role) (*Booking, error) {
	return s.decide(ctx, id, true, actorRole)
}

func (s *service) Reject(ctx context.Context, id string, actorRole user.Role) (*Booking, error) {
	return s.decide(ctx, id, false, actorRole)
}

func (s *service) decide(ctx context.Context, id string, approve bool, actorRole user.Role) (*Booking, error) {
	if !actorRole.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only pending bookings can be decided.
	if b.Status != StatusPending {
		return nil, ErrInvalidStatus
	}

	newStatus := StatusRejected
	if approve {
		// A competing booking may have been approved since this one was
		// created; re-validate before committing to the slot.
		conflicts, err := s.checker.CheckExcluding(ctx, b.ResourceID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}
		newStatus = StatusApproved
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	b.Status = newStatus

	s.notifyDecision(ctx, b, approve)
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Pick the most specific refusal reason; CanCancel stays the single
	// authority on whether the cancellation may proceed.
	if b.Status == StatusCancelled || b.Status == StatusRejected {
		return nil, ErrInvalidStatus
	}
	if b.UserID != actorID && !actorRole.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !CanCancel(b, actorID, actorRole, time.Now().UTC(), s.cancelWindow) {
		return nil, ErrCancelWindow
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled

	// Tell the owner when someone else cancelled on their behalf.
	if b.UserID != actorID {
		s.notifyCancelled(ctx, b)
	}
	return b, nil
}

func (s *service) ResourceDay(ctx context.Context, resourceID string, date time.Time) (*DaySchedule, error) {
	res, err := s.resService.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	all, err := s.repo.FetchBookingsForResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Keep the bookings that touch this calendar day.
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var dayBookings []*Booking
	for _, b := range all {
		if b.Status.Blocks() && Overlaps(dayStart, dayEnd, b.StartTime, b.EndTime) {
			dayBookings = append(dayBookings, b)
		}
	}

	slots, err := CalculateAvailability(dayStart, res.OpensAt, res.ClosesAt, dayBookings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &DaySchedule{
		ResourceID: resourceID,
		Date:       localtime.DayKey(dayStart, date.Location()),
		FreeSlots:  slots,
		Bookings:   dayBookings,
	}, nil
}

func (s *service) notifyDecision(ctx context.Context, b *Booking, approved bool) {
	if s.notifService == nil {
		return
	}

	kind := notification.KindBookingRejected
	title := "Booking rejected"
	if approved {
		kind = notification.KindBookingApproved
		title = "Booking approved"
	}

	body := fmt.Sprintf("%s from %s to %s",
		b.ResourceName,
		localtime.FormatDateTime(b.StartTime, s.displayLoc),
		localtime.FormatTime(b.EndTime, s.displayLoc),
	)

	if _, err := s.notifService.Notify(ctx, notification.CreateRequest{
		UserID:    b.UserID,
		BookingID: b.ID,
		Kind:      kind,
		Title:     title,
		Body:      body,
	}); err != nil {
		// Fan-out must never fail the booking write.
		log.Printf("failed to send %s notification for booking %s: %v", kind, b.ID, err)
	}
}

func (s *service) notifyCancelled(ctx context.Context, b *Booking) {
	if s.notifService == nil {
		return
	}

	body := fmt.Sprintf("%s on %s was cancelled by an administrator",
		b.ResourceName,
		localtime.FormatDateTime(b.StartTime, s.displayLoc),
	)

	if _, err := s.notifService.Notify(ctx, notification.CreateRequest{
		UserID:    b.UserID,
		BookingID: b.ID,
		Kind:      notification.KindBookingCancelled,
		Title:     "Booking cancelled",
		Body:      body,
	}); err != nil {
		log.Printf("failed to send cancellation notification for booking %s: %v", b.ID, err)
	}
}
