package resource

import (
	"net/http"
	"strings"
	"time"

	"github.com/campusbook/campus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidKind     = apperror.New(http.StatusBadRequest, "invalid resource kind")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be positive")
	ErrInvalidHours    = apperror.New(http.StatusBadRequest, "opening hours must be a valid time range")
)

// Kind is the closed set of bookable asset categories.
type Kind string

const (
	KindRoom      Kind = "room"
	KindLab       Kind = "lab"
	KindEquipment Kind = "equipment"
	KindVehicle   Kind = "vehicle"
)

// ParseKind validates a kind string at the store/DTO boundary.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRoom:
		return KindRoom, nil
	case KindLab:
		return KindLab, nil
	case KindEquipment:
		return KindEquipment, nil
	case KindVehicle:
		return KindVehicle, nil
	default:
		return "", ErrInvalidKind
	}
}

// Resource represents a bookable asset (e.g., Room 101, Chemistry Lab B).
type Resource struct {
	ID          string
	Name        string
	Kind        Kind
	Description string
	Capacity    int
	OpensAt     string // wall-clock "HH:MM:SS"
	ClosesAt    string // wall-clock "HH:MM:SS"
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Kind     string
	Keyword  string
	IsActive *bool
	Page     int
	PageSize int
}
