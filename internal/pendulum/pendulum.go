package pendulum

import "math"

// Point is a Cartesian position.
type Point struct {
	X, Y float64
}

// Pendulum is the dynamic state of one double pendulum. Its fields are read
// through getters; the only mutators are Advance and AdvanceWithLastStep.
type Pendulum struct {
	params Params

	theta1, theta2 float64
	omega1, omega2 float64
	alpha1, alpha2 float64

	x1, y1 float64
	x2, y2 float64

	time   float64
	lastDt float64
}

// Option customizes a Pendulum at construction.
type Option func(*Pendulum)

// WithVelocities starts the rods with the given angular velocities instead of
// at rest.
func WithVelocities(omega1, omega2 float64) Option {
	return func(pd *Pendulum) {
		pd.omega1 = omega1
		pd.omega2 = omega2
	}
}

// New builds a pendulum from initial angles (radians, from the downward
// vertical) and physical parameters. Parameters are validated before anything
// is derived; on failure the error wraps ErrInvalidParameter and no pendulum
// is returned. Angles are stored as given.
func New(theta1, theta2 float64, p Params, opts ...Option) (*Pendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pd := &Pendulum{
		params: p,
		theta1: theta1,
		theta2: theta2,
	}
	for _, opt := range opts {
		opt(pd)
	}

	pd.alpha1, pd.alpha2 = Accelerations(p, pd.theta1, pd.theta2, pd.omega1, pd.omega2)
	pd.x1, pd.y1, pd.x2, pd.y2 = Positions(p, pd.theta1, pd.theta2)

	return pd, nil
}

// Advance integrates one step of length dt.
//
// Any dt is accepted: zero leaves angles, velocities and positions unchanged,
// a negative dt steps backward in time.
func (pd *Pendulum) Advance(dt float64) {
	p := pd.params
	dt2 := dt * dt

	// velocities and angles both use the accelerations from the previous step
	pd.omega1 += pd.alpha1 * dt
	pd.omega2 += pd.alpha2 * dt
	pd.theta1 += pd.omega1*dt + 0.5*pd.alpha1*dt2
	pd.theta2 += pd.omega2*dt + 0.5*pd.alpha2*dt2

	pd.alpha1, pd.alpha2 = Accelerations(p, pd.theta1, pd.theta2, pd.omega1, pd.omega2)
	pd.x1, pd.y1, pd.x2, pd.y2 = Positions(p, pd.theta1, pd.theta2)

	pd.theta1 = NormalizeAngle(pd.theta1)
	pd.theta2 = NormalizeAngle(pd.theta2)

	pd.time += dt
	pd.lastDt = dt
}

// AdvanceWithLastStep repeats Advance with the dt of the previous call.
// Before any call to Advance it is a zero step.
func (pd *Pendulum) AdvanceWithLastStep() {
	pd.Advance(pd.lastDt)
}

func (pd *Pendulum) Params() Params    { return pd.params }
func (pd *Pendulum) Theta1() float64   { return pd.theta1 }
func (pd *Pendulum) Theta2() float64   { return pd.theta2 }
func (pd *Pendulum) Omega1() float64   { return pd.omega1 }
func (pd *Pendulum) Omega2() float64   { return pd.omega2 }
func (pd *Pendulum) Alpha1() float64   { return pd.alpha1 }
func (pd *Pendulum) Alpha2() float64   { return pd.alpha2 }
func (pd *Pendulum) Time() float64     { return pd.time }
func (pd *Pendulum) LastStep() float64 { return pd.lastDt }

// Bob1 is the end of the upper rod.
func (pd *Pendulum) Bob1() Point { return Point{X: pd.x1, Y: pd.y1} }

// Bob2 is the end of the lower rod.
func (pd *Pendulum) Bob2() Point { return Point{X: pd.x2, Y: pd.y2} }

// Positions returns both bob positions, the values a renderer needs per frame.
func (pd *Pendulum) Positions() (x1, y1, x2, y2 float64) {
	return pd.x1, pd.y1, pd.x2, pd.y2
}

// Energy is the total mechanical energy of the current state.
func (pd *Pendulum) Energy() float64 {
	return Energy(pd.params, pd.theta1, pd.theta2, pd.omega1, pd.omega2)
}

// Snapshot is a plain copy of a pendulum's dynamic state.
type Snapshot struct {
	Time   float64 `json:"time"`
	Theta1 float64 `json:"theta1"`
	Theta2 float64 `json:"theta2"`
	Omega1 float64 `json:"omega1"`
	Omega2 float64 `json:"omega2"`
	Alpha1 float64 `json:"alpha1"`
	Alpha2 float64 `json:"alpha2"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Energy float64 `json:"energy"`
}

// Snapshot copies the current state.
func (pd *Pendulum) Snapshot() Snapshot {
	return Snapshot{
		Time:   pd.time,
		Theta1: pd.theta1,
		Theta2: pd.theta2,
		Omega1: pd.omega1,
		Omega2: pd.omega2,
		Alpha1: pd.alpha1,
		Alpha2: pd.alpha2,
		X1:     pd.x1,
		Y1:     pd.y1,
		X2:     pd.x2,
		Y2:     pd.y2,
		Energy: pd.Energy(),
	}
}

// IsFinite reports whether no field of the snapshot is NaN or Inf.
func (s Snapshot) IsFinite() bool {
	for _, v := range [...]float64{
		s.Time,
		s.Theta1, s.Theta2,
		s.Omega1, s.Omega2,
		s.Alpha1, s.Alpha2,
		s.X1, s.Y1, s.X2, s.Y2,
		s.Energy,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
