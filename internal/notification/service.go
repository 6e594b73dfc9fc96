package notification

import (
	"context"
	"strings"
)

type CreateRequest struct {
	UserID    string
	BookingID string
	Kind      Kind
	Title     string
	Body      string
}

type Service interface {
	// Notify persists the notification and, when push delivery is enabled,
	// queues it for fan-out to the user's registered endpoints.
	Notify(ctx context.Context, req CreateRequest) (*Notification, error)
	ListForUser(ctx context.Context, userID string, filter Filter) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	Subscribe(ctx context.Context, sub *PushSubscription) error
}

type service struct {
	repo Repository
	pool *WorkerPool // nil when push delivery is disabled
}

func NewService(repo Repository, pool *WorkerPool) Service {
	return &service{
		repo: repo,
		pool: pool,
	}
}

func (s *service) Notify(ctx context.Context, req CreateRequest) (*Notification, error) {
	if _, err := ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}

	n := &Notification{
		UserID:    req.UserID,
		BookingID: req.BookingID,
		Kind:      req.Kind,
		Title:     req.Title,
		Body:      req.Body,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.pool != nil {
		s.pool.Dispatch(n)
	}

	return n, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, filter Filter) ([]*Notification, int, error) {
	return s.repo.ListForUser(ctx, userID, filter)
}

func (s *service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *service) Subscribe(ctx context.Context, sub *PushSubscription) error {
	if sub.Endpoint == "" || sub.P256DH == "" || sub.Auth == "" {
		return ErrBadSub
	}
	return s.repo.SaveSubscription(ctx, sub)
}
