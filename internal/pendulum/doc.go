// Package pendulum implements the planar double pendulum: two massless rigid
// rods with point masses at their ends, hinged in series under gravity.
//
// The package is built around two types:
//
//   - [Params]: immutable physical parameters (rod lengths, masses, gravity)
//   - [Pendulum]: the dynamic state, advanced one fixed step at a time
//
// The governing equations are exposed as pure functions
// ([AngularAcceleration1], [AngularAcceleration2]) and the angle to Cartesian
// transform as [Positions], so each can be tested in isolation.
//
// # Integration scheme
//
// [Pendulum.Advance] performs one semi-implicit Euler step with a second order
// position correction. Both velocities are updated with the accelerations left
// over from the previous step, then both angles, and only then are the
// accelerations recomputed at the new state:
//
//	omega += alpha * dt
//	theta += omega*dt + 0.5*alpha*dt*dt
//	alpha  = f(theta, omega)
//
// Angles are wrapped into [0, 2π) after every step.
//
// # Example
//
//	p, err := pendulum.New(15*math.Pi/180, 45*math.Pi/180, pendulum.NewParams(100, 80, 5, 5))
//	if err != nil {
//	    return err
//	}
//	for range frames {
//	    p.Advance(dt)
//	    x1, y1, x2, y2 := p.Positions()
//	    draw(x1, y1, x2, y2)
//	}
//
// # Numerical edge cases
//
// Near-singular configurations can make the acceleration denominators vanish.
// The resulting infinities and NaNs are not treated as errors: they flow
// through the state unchanged.
//
// # Thread Safety
//
// A Pendulum is NOT safe for concurrent use. Distinct instances share nothing
// and may be advanced from different goroutines without synchronization.
package pendulum
