package pendulum

import "fmt"

// DefaultGravity is the gravitational constant used when none is configured.
const DefaultGravity = 10.0

// Frame selects the Cartesian convention used for bob positions.
type Frame int

const (
	// FrameDisplay places the pivot at height Length1+Length2, so both bobs
	// stay at non-negative Y inside a display region of that height.
	FrameDisplay Frame = iota
	// FramePivot places the pivot at the origin with Y growing upward.
	FramePivot
)

func (f Frame) String() string {
	switch f {
	case FrameDisplay:
		return "display"
	case FramePivot:
		return "pivot"
	default:
		return fmt.Sprintf("Frame(%d)", int(f))
	}
}

// ParseFrame maps "display" or "pivot" to a Frame. The empty string is display.
func ParseFrame(s string) (Frame, error) {
	switch s {
	case "", "display":
		return FrameDisplay, nil
	case "pivot":
		return FramePivot, nil
	default:
		return FrameDisplay, fmt.Errorf("unknown frame: %s", s)
	}
}

// Params holds the physical parameters of a double pendulum. It is a value
// type and never changes after a Pendulum is built from it.
type Params struct {
	Length1 float64
	Length2 float64
	Mass1   float64
	Mass2   float64
	Gravity float64
	Frame   Frame
}

// NewParams returns parameters with DefaultGravity in the display frame.
func NewParams(length1, length2, mass1, mass2 float64) Params {
	return Params{
		Length1: length1,
		Length2: length2,
		Mass1:   mass1,
		Mass2:   mass2,
		Gravity: DefaultGravity,
		Frame:   FrameDisplay,
	}
}

// WithGravity returns a copy of p using g as gravitational constant.
func (p Params) WithGravity(g float64) Params {
	p.Gravity = g
	return p
}

// Validate reports the first length or mass that is not strictly positive.
// Gravity is unconstrained.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"length1", p.Length1},
		{"length2", p.Length2},
		{"mass1", p.Mass1},
		{"mass2", p.Mass2},
	}
	for _, c := range checks {
		// !(v > 0) also rejects NaN
		if !(c.value > 0) {
			return &ParameterError{Name: c.name, Value: c.value}
		}
	}
	return nil
}

// TotalLength is the reach of the fully extended pendulum.
func (p Params) TotalLength() float64 {
	return p.Length1 + p.Length2
}
