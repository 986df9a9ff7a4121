package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates run settings that cannot drive a simulation.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrNonFinite indicates the pendulum state became NaN or Inf.
	ErrNonFinite = errors.New("sim: non-finite state")
)

// SimError wraps an error with the tick and simulated time it occurred at.
type SimError struct {
	Step    int
	Time    float64
	Message string
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
