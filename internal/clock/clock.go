package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so period calculations are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystem returns the real clock.
func NewSystem() Clock {
	return systemClock{}
}

// Module wires the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystem),
)
