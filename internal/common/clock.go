package common

import "time"

// Clock provides the current time. The lockout and presence rules all compare
// against wall-clock deadlines, so tests inject a fake instead of sleeping.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

var _ Clock = RealClock{}
