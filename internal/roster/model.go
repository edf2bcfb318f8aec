package roster

import (
	"net/http"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "roster not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "max capacity must be positive")

	// ErrCapacityInvariant marks a counter state that should be impossible
	// in correct operation. It is a programmer bug, not user error; the
	// ledger logs it at error severity and aborts the operation.
	ErrCapacityInvariant = apperror.New(http.StatusInternalServerError, "roster capacity invariant violated")
)

// Roster is the capacity-bounded enrollment list for one course offering.
// A nil MaxCapacity means unlimited.
type Roster struct {
	ID                string
	Name              string
	MaxCapacity       *int32
	CurrentEnrollment int32
	WaitlistCount     int32
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Counters carries the mutable capacity state of one roster. The transition
// methods hold all capacity math, so they can be exercised without a
// database; the ledger loads Counters under a row lock, applies a transition,
// and writes the result back.
type Counters struct {
	MaxCapacity       *int32
	CurrentEnrollment int32
	WaitlistCount     int32
}

// AdmitOutcome is the result of a TryAdmit transition.
type AdmitOutcome struct {
	Admitted         bool
	WaitlistPosition int32 // dense 1-based position, set when not admitted
}

// TryAdmit admits when a seat is free (or capacity is unlimited), otherwise
// appends to the waitlist and reports the assigned position.
func (c *Counters) TryAdmit() (AdmitOutcome, error) {
	if err := c.check(); err != nil {
		return AdmitOutcome{}, err
	}

	if c.MaxCapacity == nil || c.CurrentEnrollment < *c.MaxCapacity {
		c.CurrentEnrollment++
		if err := c.check(); err != nil {
			return AdmitOutcome{}, err
		}
		return AdmitOutcome{Admitted: true}, nil
	}

	c.WaitlistCount++
	return AdmitOutcome{WaitlistPosition: c.WaitlistCount}, nil
}

// WithdrawEnrolled frees one seat and reports whether a waitlisted enrollment
// is available for promotion.
func (c *Counters) WithdrawEnrolled() (promotable bool, err error) {
	if c.CurrentEnrollment < 1 {
		return false, ErrCapacityInvariant
	}
	c.CurrentEnrollment--
	if err := c.check(); err != nil {
		return false, err
	}
	return c.WaitlistCount > 0, nil
}

// WithdrawWaitlisted removes one waitlist slot.
func (c *Counters) WithdrawWaitlisted() error {
	if c.WaitlistCount < 1 {
		return ErrCapacityInvariant
	}
	c.WaitlistCount--
	return c.check()
}

// Promote moves one waitlist slot into the roster.
func (c *Counters) Promote() error {
	if c.WaitlistCount < 1 {
		return ErrCapacityInvariant
	}
	c.WaitlistCount--
	c.CurrentEnrollment++
	return c.check()
}

func (c *Counters) check() error {
	if c.CurrentEnrollment < 0 || c.WaitlistCount < 0 {
		return ErrCapacityInvariant
	}
	if c.MaxCapacity != nil && c.CurrentEnrollment > *c.MaxCapacity {
		return ErrCapacityInvariant
	}
	return nil
}

// Filter defines parameters for listing rosters.
type Filter struct {
	Page     int
	PageSize int
}
