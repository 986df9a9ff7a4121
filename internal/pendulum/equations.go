package pendulum

import "math"

// AngularAcceleration1 evaluates the Lagrangian equation of motion for the
// upper rod:
//
//	α1 = [-g(2m1+m2)sin θ1 - m2 g sin(θ1-2θ2)
//	      - 2 sin(θ1-θ2) m2 (ω2² L2 + ω1² L1 cos(θ1-θ2))]
//	     / [L1 (2m1 + m2 - m2 cos(2θ1-2θ2))]
//
// The denominator is not guarded; a vanishing value yields ±Inf or NaN.
func AngularAcceleration1(p Params, theta1, theta2, omega1, omega2 float64) float64 {
	m1, m2, l1, l2, g := p.Mass1, p.Mass2, p.Length1, p.Length2, p.Gravity

	num := -g*(2*m1+m2)*math.Sin(theta1) -
		m2*g*math.Sin(theta1-2*theta2) -
		2*math.Sin(theta1-theta2)*m2*(omega2*omega2*l2+omega1*omega1*l1*math.Cos(theta1-theta2))
	den := l1 * (2*m1 + m2 - m2*math.Cos(2*theta1-2*theta2))

	return num / den
}

// AngularAcceleration2 evaluates the equation of motion for the lower rod:
//
//	α2 = [2 sin(θ1-θ2) (ω1² L1 (m1+m2) + g (m1+m2) cos θ1 + ω2² L2 m2 cos(θ1-θ2))]
//	     / [L2 (2m1 + m2 - m2 cos(2θ1-2θ2))]
func AngularAcceleration2(p Params, theta1, theta2, omega1, omega2 float64) float64 {
	m1, m2, l1, l2, g := p.Mass1, p.Mass2, p.Length1, p.Length2, p.Gravity

	num := 2 * math.Sin(theta1-theta2) *
		(omega1*omega1*l1*(m1+m2) +
			g*(m1+m2)*math.Cos(theta1) +
			omega2*omega2*l2*m2*math.Cos(theta1-theta2))
	den := l2 * (2*m1 + m2 - m2*math.Cos(2*theta1-2*theta2))

	return num / den
}

// Accelerations returns both angular accelerations at the given state.
func Accelerations(p Params, theta1, theta2, omega1, omega2 float64) (alpha1, alpha2 float64) {
	return AngularAcceleration1(p, theta1, theta2, omega1, omega2),
		AngularAcceleration2(p, theta1, theta2, omega1, omega2)
}

// Positions maps rod angles to bob coordinates in p's frame. Angles are
// measured from the downward vertical; positive angles swing toward +X.
func Positions(p Params, theta1, theta2 float64) (x1, y1, x2, y2 float64) {
	l1, l2 := p.Length1, p.Length2

	x1 = l1 * math.Sin(theta1)
	x2 = x1 + l2*math.Sin(theta2)

	if p.Frame == FramePivot {
		y1 = -l1 * math.Cos(theta1)
		y2 = y1 - l2*math.Cos(theta2)
		return
	}

	height := l1 + l2
	y1 = height - l1*math.Cos(theta1)
	y2 = height - (l1*math.Cos(theta1) + l2*math.Cos(theta2))
	return
}

// NormalizeAngle wraps theta into [0, 2π). Non-finite input yields NaN.
func NormalizeAngle(theta float64) float64 {
	const twoPi = 2 * math.Pi
	a := math.Mod(theta, twoPi)
	if a < 0 {
		a += twoPi
	}
	// a tiny negative remainder can round up to exactly 2π
	if a >= twoPi {
		a = 0
	}
	return a
}

// Energy returns the total mechanical energy at the given state, with
// potential energy measured from the pivot.
func Energy(p Params, theta1, theta2, omega1, omega2 float64) float64 {
	m1, m2, l1, l2, g := p.Mass1, p.Mass2, p.Length1, p.Length2, p.Gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := v1sq + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	h1 := -l1 * math.Cos(theta1)
	h2 := h1 - l2*math.Cos(theta2)
	pe := m1*g*h1 + m2*g*h2

	return ke + pe
}
