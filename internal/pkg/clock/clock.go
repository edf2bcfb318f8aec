package clock

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now directly so tests can pin timestamps and day boundaries.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by the wall clock, normalized to UTC.
func System() Clock {
	return systemClock{}
}

// Fixed returns a Clock that always reports t. Intended for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
