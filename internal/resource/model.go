package resource

import (
	"net/http"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName   = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidKind = apperror.New(http.StatusBadRequest, "invalid resource kind")
)

// Kind distinguishes the two bookable resource flavors. An instructor and a
// location are booked independently; a session needing both holds one booking
// per resource.
type Kind string

const (
	KindInstructor Kind = "instructor"
	KindLocation   Kind = "location"
)

// Valid reports whether k is a known resource kind.
func (k Kind) Valid() bool {
	return k == KindInstructor || k == KindLocation
}

// Resource is a bookable unit: an instructor or a physical/virtual location.
type Resource struct {
	ID        string
	Name      string
	Kind      Kind
	CreatedAt time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Kind     string
	Page     int
	PageSize int
}
