package resource

import (
	"context"
	"strings"
	"time"
)

type CreateRequest struct {
	Name        string
	Kind        string
	Description string
	Capacity    int
	OpensAt     string
	ClosesAt    string
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Capacity    *int
	OpensAt     *string
	ClosesAt    *string
	IsActive    *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

const (
	defaultOpensAt  = "08:00:00"
	defaultClosesAt = "22:00:00"
)

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	opensAt := req.OpensAt
	if opensAt == "" {
		opensAt = defaultOpensAt
	}
	closesAt := req.ClosesAt
	if closesAt == "" {
		closesAt = defaultClosesAt
	}
	if err := validateHours(opensAt, closesAt); err != nil {
		return nil, err
	}

	res := &Resource{
		Name:        strings.TrimSpace(req.Name),
		Kind:        kind,
		Description: req.Description,
		Capacity:    req.Capacity,
		OpensAt:     opensAt,
		ClosesAt:    closesAt,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
		res.Capacity = *req.Capacity
	}
	if req.OpensAt != nil {
		res.OpensAt = *req.OpensAt
	}
	if req.ClosesAt != nil {
		res.ClosesAt = *req.ClosesAt
	}
	if req.OpensAt != nil || req.ClosesAt != nil {
		if err := validateHours(res.OpensAt, res.ClosesAt); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		res.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// validateHours checks that both values are valid wall-clock times and that
// the close time is after the open time.
func validateHours(opensAt, closesAt string) error {
	open, err := parseClock(opensAt)
	if err != nil {
		return ErrInvalidHours
	}
	closeT, err := parseClock(closesAt)
	if err != nil {
		return ErrInvalidHours
	}
	if !closeT.After(open) {
		return ErrInvalidHours
	}
	return nil
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}
