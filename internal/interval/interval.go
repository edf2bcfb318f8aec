package interval

import (
	"net/http"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/apperror"
)

var ErrInvalid = apperror.New(http.StatusBadRequest, "start time must be before end time")

// Interval is a half-open time window [Start, End). It is a value type and is
// never mutated after construction.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New builds an Interval, rejecting windows where start >= end.
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalid
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open windows intersect. Touching
// endpoints do not overlap: a session ending at 10:00 is compatible with one
// starting at 10:00.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Duration returns the length of the window.
func (a Interval) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Day returns the UTC day window containing t, i.e. [midnight, midnight+24h).
func Day(t time.Time) Interval {
	start := t.UTC().Truncate(24 * time.Hour)
	return Interval{Start: start, End: start.Add(24 * time.Hour)}
}
