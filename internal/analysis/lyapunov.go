package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/dpsim/internal/pendulum"
)

type LyapunovConfig struct {
	Dt           float64
	Duration     float64
	Perturbation float64
}

func DefaultLyapunovConfig() LyapunovConfig {
	return LyapunovConfig{Dt: 0.001, Duration: 20, Perturbation: 1e-8}
}

var ErrLyapunovConfig = errors.New("analysis: lyapunov dt, duration and perturbation must be positive")

// LyapunovExponent estimates the largest Lyapunov exponent from the current
// state of p by the trajectory separation method. p is not advanced.
//
// A shadow trajectory starts Perturbation away in θ1. After every step the
// separation d over (θ1, θ2, ω1, ω2) is measured, with angle differences
// wrapped to (-π, π], log(d/d0) is accumulated and the shadow is pulled back
// to distance d0. The estimate is the accumulated log over elapsed time.
// Returns NaN if either trajectory stops being finite.
func LyapunovExponent(p *pendulum.Pendulum, cfg LyapunovConfig) (float64, error) {
	if !(cfg.Dt > 0) || !(cfg.Duration > 0) || !(cfg.Perturbation > 0) {
		return 0, ErrLyapunovConfig
	}

	params := p.Params()
	ref, err := pendulum.New(p.Theta1(), p.Theta2(), params, pendulum.WithVelocities(p.Omega1(), p.Omega2()))
	if err != nil {
		return 0, err
	}
	d0 := cfg.Perturbation
	shadow, err := pendulum.New(p.Theta1()+d0, p.Theta2(), params, pendulum.WithVelocities(p.Omega1(), p.Omega2()))
	if err != nil {
		return 0, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		ref.Advance(cfg.Dt)
		shadow.Advance(cfg.Dt)

		delta := separation(ref, shadow)
		sep := math.Sqrt(delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2] + delta[3]*delta[3])
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			return math.NaN(), nil
		}
		if sep == 0 {
			continue
		}

		sumLog += math.Log(sep / d0)
		count++

		// Renormalize to keep the shadow in the linear regime
		scale := d0 / sep
		shadow, err = pendulum.New(
			ref.Theta1()+delta[0]*scale,
			ref.Theta2()+delta[1]*scale,
			params,
			pendulum.WithVelocities(ref.Omega1()+delta[2]*scale, ref.Omega2()+delta[3]*scale),
		)
		if err != nil {
			return 0, err
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(steps) * cfg.Dt), nil
}

func separation(a, b *pendulum.Pendulum) [4]float64 {
	return [4]float64{
		WrapAngle(b.Theta1() - a.Theta1()),
		WrapAngle(b.Theta2() - a.Theta2()),
		b.Omega1() - a.Omega1(),
		b.Omega2() - a.Omega2(),
	}
}

// WrapAngle maps an angle difference into (-π, π].
func WrapAngle(d float64) float64 {
	d = math.Mod(d, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
