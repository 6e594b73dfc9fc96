package http

import (
	"time"

	"github.com/campusbook/campus-booking-backend/internal/pkg/request"
	"github.com/campusbook/campus-booking-backend/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	request.ListParams
	Kind     string `form:"kind" binding:"omitempty,oneof=room lab equipment vehicle"`
	Keyword  string `form:"keyword"`
	IsActive *bool  `form:"is_active"`
}

// ResourceResponse is the shape of resource data returned by the API.
type ResourceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	OpensAt     string    `json:"opens_at"`
	ClosesAt    string    `json:"closes_at"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResourceTag is a brief representation of a resource embedded in other responses.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewResourceResponse(res *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:          res.ID,
		Name:        res.Name,
		Kind:        string(res.Kind),
		Description: res.Description,
		Capacity:    res.Capacity,
		OpensAt:     res.OpensAt,
		ClosesAt:    res.ClosesAt,
		IsActive:    res.IsActive,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
}

type CreateResourceRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Kind        string `json:"kind" binding:"required,oneof=room lab equipment vehicle"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	OpensAt     string `json:"opens_at" binding:"omitempty"`
	ClosesAt    string `json:"closes_at" binding:"omitempty"`
}

type UpdateResourceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
	OpensAt     *string `json:"opens_at"`
	ClosesAt    *string `json:"closes_at"`
	IsActive    *bool   `json:"is_active"`
}
