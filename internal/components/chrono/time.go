package chrono

import "time"

// API is the source of the current time, tests replace it with a FixedImpl.
type API interface {
	Now() time.Time
}

type StandardImpl struct{}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// FixedImpl always returns the same time.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}
