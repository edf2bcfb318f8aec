package enrollment

import (
	"net/http"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "enrollment not found")
	ErrDuplicate        = apperror.New(http.StatusConflict, "participant already has an active enrollment on this roster")
	ErrAlreadyWithdrawn = apperror.New(http.StatusConflict, "enrollment already withdrawn")
	ErrScheduleConflict = apperror.New(http.StatusConflict, "session time conflicts with existing bookings")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid enrollment status")
)

type Status string

const (
	StatusEnrolled   Status = "enrolled"
	StatusWaitlisted Status = "waitlisted"
	StatusWithdrawn  Status = "withdrawn"
)

// Valid reports whether s is a known enrollment status.
func (s Status) Valid() bool {
	return s == StatusEnrolled || s == StatusWaitlisted || s == StatusWithdrawn
}

// Active reports whether the enrollment still occupies a seat or a waitlist
// slot. At most one active enrollment exists per (roster, participant) pair.
func (s Status) Active() bool {
	return s == StatusEnrolled || s == StatusWaitlisted
}

// Enrollment is one participant's admission record on a roster. A rejected
// attempt (conflict, duplicate) is returned as an error and never stored.
type Enrollment struct {
	ID               string
	RosterID         string
	ParticipantID    string
	Status           Status
	WaitlistPosition *int32 // dense 1-based, set only while waitlisted
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter defines parameters for listing enrollments on a roster.
type Filter struct {
	RosterID      string
	ParticipantID string
	Status        string
	Page          int
	PageSize      int
}
