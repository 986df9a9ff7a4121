package pendulum

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter indicates a non-positive (or NaN) length or mass.
var ErrInvalidParameter = errors.New("pendulum: invalid parameter")

// ParameterError records which physical parameter failed validation.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("pendulum: invalid parameter %s=%g (must be > 0)", e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
