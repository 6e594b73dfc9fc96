package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/campus-booking-backend/internal/notification"
	"github.com/campusbook/campus-booking-backend/internal/resource"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	bookings  map[string]*Booking
	nextID    int
	createErr error
	fetchErr  error

	// fetchQueue, when set, serves successive FetchBookingsForResource
	// calls in order instead of scanning the map. Lets a test show a free
	// slot on one fetch and a winner on the next.
	fetchQueue [][]*Booking
}

func newFakeRepo(seed ...*Booking) *fakeRepo {
	r := &fakeRepo{bookings: make(map[string]*Booking)}
	for _, b := range seed {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, b *Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	b.ID = fmt.Sprintf("gen-%d", r.nextID)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeRepo) FetchBookingsForResource(_ context.Context, resourceID string) ([]*Booking, error) {
	if len(r.fetchQueue) > 0 {
		out := r.fetchQueue[0]
		r.fetchQueue = r.fetchQueue[1:]
		return out, nil
	}
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []*Booking
	for _, b := range r.bookings {
		if b.ResourceID == resourceID {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeResourceService serves a fixed catalog.
type fakeResourceService struct {
	resources map[string]*resource.Resource
}

func (f *fakeResourceService) Create(_ context.Context, _ resource.CreateRequest) (*resource.Resource, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeResourceService) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return res, nil
}

func (f *fakeResourceService) List(_ context.Context, _ resource.Filter) ([]*resource.Resource, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeResourceService) Update(_ context.Context, _ string, _ resource.UpdateRequest) (*resource.Resource, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeResourceService) Delete(_ context.Context, _ string) error {
	return errors.New("not implemented")
}

// fakeNotifService records what was sent.
type fakeNotifService struct {
	sent []notification.CreateRequest
}

func (f *fakeNotifService) Notify(_ context.Context, req notification.CreateRequest) (*notification.Notification, error) {
	f.sent = append(f.sent, req)
	return &notification.Notification{}, nil
}

func (f *fakeNotifService) ListForUser(_ context.Context, _ string, _ notification.Filter) ([]*notification.Notification, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeNotifService) MarkRead(_ context.Context, _, _ string) error {
	return errors.New("not implemented")
}

func (f *fakeNotifService) Subscribe(_ context.Context, _ *notification.PushSubscription) error {
	return errors.New("not implemented")
}

// ownerID is a fixed valid user UUID for the booking owner.
const ownerID = "0b9fa1b2-33c4-45d6-8e7f-9012a3b4c5d6"

func futureAt(hour, min int) time.Time {
	return time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour).Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func testCatalog() *fakeResourceService {
	return &fakeResourceService{resources: map[string]*resource.Resource{
		"room-101": {ID: "room-101", Name: "Room 101", Kind: resource.KindRoom, OpensAt: "08:00:00", ClosesAt: "22:00:00", IsActive: true},
		"old-lab":  {ID: "old-lab", Name: "Old Lab", Kind: resource.KindLab, OpensAt: "08:00:00", ClosesAt: "22:00:00", IsActive: false},
	}}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path creates a pending booking", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		b, err := svc.Create(ctx, CreateRequest{
			UserID:     ownerID,
			ResourceID: "room-101",
			Purpose:    "study group",
			Attendees:  4,
			StartTime:  futureAt(10, 0),
			EndTime:    futureAt(11, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, b.Status)
		assert.Equal(t, "Room 101", b.ResourceName)
		assert.NotEmpty(t, b.ID)
	})

	t.Run("overlapping booking is refused with the conflicts listed", func(t *testing.T) {
		existing := &Booking{
			ID:         "b1",
			ResourceID: "room-101",
			UserID:     "u2",
			StartTime:  futureAt(10, 0),
			EndTime:    futureAt(12, 0),
			Status:     StatusApproved,
		}
		repo := newFakeRepo(existing)
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Create(ctx, CreateRequest{
			UserID:     ownerID,
			ResourceID: "room-101",
			StartTime:  futureAt(11, 0),
			EndTime:    futureAt(13, 0),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimeConflict)

		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		require.Len(t, conflictErr.Conflicts, 1)
		assert.Equal(t, "b1", conflictErr.Conflicts[0].ID)
	})

	t.Run("abutting booking is allowed", func(t *testing.T) {
		existing := &Booking{
			ID:         "b1",
			ResourceID: "room-101",
			StartTime:  futureAt(10, 0),
			EndTime:    futureAt(12, 0),
			Status:     StatusApproved,
		}
		repo := newFakeRepo(existing)
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Create(ctx, CreateRequest{
			UserID:     ownerID,
			ResourceID: "room-101",
			StartTime:  futureAt(12, 0),
			EndTime:    futureAt(13, 0),
		})
		assert.NoError(t, err)
	})

	t.Run("store failure refuses the booking", func(t *testing.T) {
		repo := newFakeRepo()
		repo.fetchErr = errors.New("connection reset")
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Create(ctx, CreateRequest{
			UserID:     ownerID,
			ResourceID: "room-101",
			StartTime:  futureAt(10, 0),
			EndTime:    futureAt(11, 0),
		})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("conflict detected by the locked re-check", func(t *testing.T) {
		winner := &Booking{
			ID:         "b-winner",
			ResourceID: "room-101",
			UserID:     "u2",
			StartTime:  futureAt(10, 30),
			EndTime:    futureAt(11, 30),
			Status:     StatusApproved,
		}
		repo := newFakeRepo()
		repo.createErr = ErrTimeConflict
		// The advisory check sees a free slot; by the time the locked
		// insert runs, the winner holds it.
		repo.fetchQueue = [][]*Booking{nil, {winner}}
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Create(ctx, CreateRequest{
			UserID:     ownerID,
			ResourceID: "room-101",
			StartTime:  futureAt(10, 0),
			EndTime:    futureAt(11, 0),
		})
		assert.ErrorIs(t, err, ErrTimeConflict)

		// The refusal still names the interval that won the race.
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		require.Len(t, conflictErr.Conflicts, 1)
		assert.Equal(t, "b-winner", conflictErr.Conflicts[0].ID)
	})

	t.Run("locked re-check loses race and re-fetch fails", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = ErrTimeConflict
		// First fetch succeeds, second hits fetchErr.
		repo.fetchQueue = [][]*Booking{nil}
		repo.fetchErr = errors.New("connection reset")
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Create(ctx, CreateRequest{
			UserID:     ownerID,
			ResourceID: "room-101",
			StartTime:  futureAt(10, 0),
			EndTime:    futureAt(11, 0),
		})
		// The refusal stays a conflict even when it cannot be itemized.
		assert.ErrorIs(t, err, ErrTimeConflict)
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Empty(t, conflictErr.Conflicts)
	})

	t.Run("validation failures", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Create(ctx, CreateRequest{
			UserID: ownerID, ResourceID: "room-101",
			StartTime: futureAt(11, 0), EndTime: futureAt(10, 0),
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		_, err = svc.Create(ctx, CreateRequest{
			UserID: ownerID, ResourceID: "room-101",
			StartTime: time.Now().UTC().Add(-time.Hour), EndTime: time.Now().UTC().Add(time.Hour),
		})
		assert.ErrorIs(t, err, ErrStartTimePast)

		_, err = svc.Create(ctx, CreateRequest{
			UserID: ownerID, ResourceID: "no-such-room",
			StartTime: futureAt(10, 0), EndTime: futureAt(11, 0),
		})
		assert.ErrorIs(t, err, ErrResourceNotFound)

		_, err = svc.Create(ctx, CreateRequest{
			UserID: ownerID, ResourceID: "old-lab",
			StartTime: futureAt(10, 0), EndTime: futureAt(11, 0),
		})
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})
}

func TestServiceDecide(t *testing.T) {
	ctx := context.Background()

	pending := func() *Booking {
		return &Booking{
			ID:           "b1",
			ResourceID:   "room-101",
			ResourceName: "Room 101",
			UserID:       ownerID,
			StartTime:    futureAt(10, 0),
			EndTime:      futureAt(11, 0),
			Status:       StatusPending,
		}
	}

	t.Run("only admins decide", func(t *testing.T) {
		repo := newFakeRepo(pending())
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Approve(ctx, "b1", user.RoleStudent)
		assert.ErrorIs(t, err, ErrPermissionDenied)

		_, err = svc.Reject(ctx, "b1", user.RoleStaff)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("approve marks approved and notifies the owner", func(t *testing.T) {
		repo := newFakeRepo(pending())
		notif := &fakeNotifService{}
		svc := NewService(repo, testCatalog(), notif, 0, time.UTC)

		b, err := svc.Approve(ctx, "b1", user.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, b.Status)

		stored, _ := repo.GetByID(ctx, "b1")
		assert.Equal(t, StatusApproved, stored.Status)

		require.Len(t, notif.sent, 1)
		assert.Equal(t, notification.KindBookingApproved, notif.sent[0].Kind)
		assert.Equal(t, ownerID, notif.sent[0].UserID)
	})

	t.Run("reject marks rejected and notifies the owner", func(t *testing.T) {
		repo := newFakeRepo(pending())
		notif := &fakeNotifService{}
		svc := NewService(repo, testCatalog(), notif, 0, time.UTC)

		b, err := svc.Reject(ctx, "b1", user.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, b.Status)

		require.Len(t, notif.sent, 1)
		assert.Equal(t, notification.KindBookingRejected, notif.sent[0].Kind)
	})

	t.Run("already decided bookings cannot be decided again", func(t *testing.T) {
		b := pending()
		b.Status = StatusApproved
		repo := newFakeRepo(b)
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Approve(ctx, "b1", user.RoleAdmin)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("approve re-checks against competitors", func(t *testing.T) {
		competitor := &Booking{
			ID:         "b2",
			ResourceID: "room-101",
			UserID:     "u2",
			StartTime:  futureAt(10, 30),
			EndTime:    futureAt(11, 30),
			Status:     StatusApproved,
		}
		repo := newFakeRepo(pending(), competitor)
		svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

		_, err := svc.Approve(ctx, "b1", user.RoleAdmin)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimeConflict)

		// The booking stays pending when the approval loses the slot.
		stored, _ := repo.GetByID(ctx, "b1")
		assert.Equal(t, StatusPending, stored.Status)
	})
}

func TestServiceCancel(t *testing.T) {
	ctx := context.Background()

	active := func(startsIn time.Duration) *Booking {
		return &Booking{
			ID:           "b1",
			ResourceID:   "room-101",
			ResourceName: "Room 101",
			UserID:       ownerID,
			StartTime:    time.Now().UTC().Add(startsIn),
			EndTime:      time.Now().UTC().Add(startsIn + time.Hour),
			Status:       StatusApproved,
		}
	}

	t.Run("owner cancels in time", func(t *testing.T) {
		repo := newFakeRepo(active(3 * time.Hour))
		svc := NewService(repo, testCatalog(), nil, 2*time.Hour, time.UTC)

		b, err := svc.Cancel(ctx, "b1", ownerID, user.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
	})

	t.Run("too close to start time", func(t *testing.T) {
		repo := newFakeRepo(active(time.Hour))
		svc := NewService(repo, testCatalog(), nil, 2*time.Hour, time.UTC)

		_, err := svc.Cancel(ctx, "b1", ownerID, user.RoleStudent)
		assert.ErrorIs(t, err, ErrCancelWindow)
	})

	t.Run("strangers may not cancel", func(t *testing.T) {
		repo := newFakeRepo(active(3 * time.Hour))
		svc := NewService(repo, testCatalog(), nil, 2*time.Hour, time.UTC)

		_, err := svc.Cancel(ctx, "b1", "u2", user.RoleStaff)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("already inert bookings cannot be cancelled", func(t *testing.T) {
		b := active(3 * time.Hour)
		b.Status = StatusRejected
		repo := newFakeRepo(b)
		svc := NewService(repo, testCatalog(), nil, 2*time.Hour, time.UTC)

		_, err := svc.Cancel(ctx, "b1", ownerID, user.RoleStudent)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("admin cancelling for someone else notifies them", func(t *testing.T) {
		repo := newFakeRepo(active(3 * time.Hour))
		notif := &fakeNotifService{}
		svc := NewService(repo, testCatalog(), notif, 2*time.Hour, time.UTC)

		b, err := svc.Cancel(ctx, "b1", "admin-1", user.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)

		require.Len(t, notif.sent, 1)
		assert.Equal(t, notification.KindBookingCancelled, notif.sent[0].Kind)
		assert.Equal(t, ownerID, notif.sent[0].UserID)
	})

	t.Run("owner cancelling their own booking sends nothing", func(t *testing.T) {
		repo := newFakeRepo(active(3 * time.Hour))
		notif := &fakeNotifService{}
		svc := NewService(repo, testCatalog(), notif, 2*time.Hour, time.UTC)

		_, err := svc.Cancel(ctx, "b1", ownerID, user.RoleStudent)
		require.NoError(t, err)
		assert.Empty(t, notif.sent)
	})

	t.Run("unknown booking", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, testCatalog(), nil, 2*time.Hour, time.UTC)

		_, err := svc.Cancel(ctx, "nope", ownerID, user.RoleStudent)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceResourceDay(t *testing.T) {
	ctx := context.Background()
	day := futureAt(0, 0)

	seed := []*Booking{
		{
			ID: "b1", ResourceID: "room-101", UserID: ownerID,
			StartTime: day.Add(10 * time.Hour), EndTime: day.Add(12 * time.Hour),
			Status: StatusApproved,
		},
		{
			ID: "b2", ResourceID: "room-101", UserID: "u2",
			StartTime: day.Add(14 * time.Hour), EndTime: day.Add(15 * time.Hour),
			Status: StatusCancelled,
		},
		{
			ID: "b3", ResourceID: "room-101", UserID: "u3",
			StartTime: day.AddDate(0, 0, 1).Add(10 * time.Hour), EndTime: day.AddDate(0, 0, 1).Add(11 * time.Hour),
			Status: StatusApproved,
		},
	}
	repo := newFakeRepo(seed...)
	svc := NewService(repo, testCatalog(), nil, 0, time.UTC)

	sched, err := svc.ResourceDay(ctx, "room-101", day)
	require.NoError(t, err)

	assert.Equal(t, "room-101", sched.ResourceID)
	assert.Equal(t, day.Format("2006-01-02"), sched.Date)

	// Only the blocking booking on this day shows up.
	require.Len(t, sched.Bookings, 1)
	assert.Equal(t, "b1", sched.Bookings[0].ID)

	// Opening hours 08:00-22:00 minus the 10:00-12:00 booking.
	require.Len(t, sched.FreeSlots, 2)
	assert.Equal(t, day.Add(8*time.Hour), sched.FreeSlots[0].StartTime)
	assert.Equal(t, day.Add(10*time.Hour), sched.FreeSlots[0].EndTime)
	assert.Equal(t, day.Add(12*time.Hour), sched.FreeSlots[1].StartTime)
	assert.Equal(t, day.Add(22*time.Hour), sched.FreeSlots[1].EndTime)

	_, err = svc.ResourceDay(ctx, "no-such-room", day)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
