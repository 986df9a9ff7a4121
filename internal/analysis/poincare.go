package analysis

import (
	"math"

	"github.com/san-kum/dpsim/internal/pendulum"
)

// PoincarePoint is the lower rod's state at the moment the upper rod swings
// up through the vertical.
type PoincarePoint struct {
	Time   float64 `json:"time"`
	Theta2 float64 `json:"theta2"`
	Omega2 float64 `json:"omega2"`
}

// PoincareSection advances p by dt until duration has elapsed and records
// (θ2, ω2) each time θ1 crosses 0 with ω1 > 0. Values are linearly
// interpolated to the crossing; θ2 is reported in (-π, π]. p is mutated.
func PoincareSection(p *pendulum.Pendulum, dt, duration float64) []PoincarePoint {
	if !(dt > 0) || !(duration > 0) {
		return nil
	}

	points := make([]PoincarePoint, 0)
	steps := int(duration/dt + 1e-9)

	prev := p.Snapshot()
	for i := 0; i < steps; i++ {
		p.Advance(dt)
		cur := p.Snapshot()

		a, b := WrapAngle(prev.Theta1), WrapAngle(cur.Theta1)
		// a positive-going crossing never spans more than half a turn
		if a < 0 && b >= 0 && b-a < math.Pi && cur.Omega1 > 0 {
			frac := -a / (b - a)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 1
			}
			points = append(points, PoincarePoint{
				Time:   prev.Time + frac*(cur.Time-prev.Time),
				Theta2: WrapAngle(prev.Theta2 + frac*WrapAngle(cur.Theta2-prev.Theta2)),
				Omega2: prev.Omega2 + frac*(cur.Omega2-prev.Omega2),
			})
		}

		prev = cur
	}

	return points
}

// PhasePoints pairs two snapshot fields for plotting.
func PhasePoints(samples []pendulum.Snapshot, x, y func(pendulum.Snapshot) float64) []Point {
	points := make([]Point, len(samples))
	for i, s := range samples {
		points[i] = Point{X: x(s), Y: y(s)}
	}
	return points
}
