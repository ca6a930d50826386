package util

import "time"

// Clock abstracts wall time so tests can pin order creation timestamps.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// StepClock hands out strictly increasing instants, advancing Step on every
// call. Deterministic ids in tests without timestamp collisions.
type StepClock struct {
	T    time.Time
	Step time.Duration
}

func (c *StepClock) Now() time.Time {
	c.T = c.T.Add(c.Step)
	return c.T
}
