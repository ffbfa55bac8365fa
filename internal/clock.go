package internal

import "time"

// Clock abstracts the current time so session lifecycle code can be
// tested with a deterministic clock instead of wall-clock calls.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
