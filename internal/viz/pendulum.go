package viz

import (
	"math"

	"github.com/san-kum/dpsim/internal/pendulum"
)

// DrawPendulum renders both rods and bobs of s on a w x h cell canvas. The
// view spans the full reach of the pendulum, [-L, L] horizontally and
// [0, 2L] vertically in display coordinates, with L = Length1 + Length2.
// A snapshot with non-finite positions draws only the pivot.
func DrawPendulum(s pendulum.Snapshot, p pendulum.Params, w, h int) *Canvas {
	c := NewCanvas(w, h)
	reach := p.TotalLength()
	if w <= 0 || h <= 0 || !(reach > 0) {
		return c
	}

	y1, y2 := s.Y1, s.Y2
	if p.Frame == pendulum.FramePivot {
		y1 += reach
		y2 += reach
	}

	pxW, pxH := float64(w*2-1), float64(h*4-1)
	scale := math.Min(pxW, pxH) / (2 * reach)
	offX := (pxW - 2*reach*scale) / 2
	offY := (pxH - 2*reach*scale) / 2

	toPx := func(x, y float64) (int, int) {
		return int(math.Round(offX + (x+reach)*scale)), int(math.Round(offY + (2*reach-y)*scale))
	}

	pivotX, pivotY := toPx(0, reach)
	c.FillDisc(pivotX, pivotY, 1)

	if !finite(s.X1, y1, s.X2, y2) {
		return c
	}

	b1x, b1y := toPx(s.X1, y1)
	b2x, b2y := toPx(s.X2, y2)
	c.DrawLine(pivotX, pivotY, b1x, b1y)
	c.DrawLine(b1x, b1y, b2x, b2y)
	c.FillDisc(b1x, b1y, 2)
	c.FillDisc(b2x, b2y, 2)

	return c
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
