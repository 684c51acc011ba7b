package secondary

import "time"

// Clock is the wall-clock source. Every component takes its notion of
// "now" from here so tests can drive time; Now is always pinned to the
// configured canonical zone.
type Clock interface {
	Now() time.Time

	// After returns a channel that fires once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the real clock, pinned to a zone.
type SystemClock struct {
	Loc *time.Location
}

// NewSystemClock builds a clock pinned to loc (UTC when nil).
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{Loc: loc}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.Loc)
}

func (c *SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

var _ Clock = (*SystemClock)(nil)
