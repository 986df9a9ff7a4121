package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/dpsim/internal/pendulum"
)

// TraceSVG writes an SVG of the lower bob's path over samples, with the rods
// drawn at the last finite sample. The view covers the pendulum's full reach
// in display coordinates, so traces of the same pendulum line up.
// Drawing stops at the first non-finite sample.
func TraceSVG(w io.Writer, samples []pendulum.Snapshot, p pendulum.Params, size int, strokeColor string) error {
	reach := p.TotalLength()
	if size <= 0 || !(reach > 0) {
		return fmt.Errorf("export: invalid svg size %d or reach %g", size, reach)
	}

	scale := float64(size) / (2 * reach)
	shift := 0.0
	if p.Frame == pendulum.FramePivot {
		shift = reach
	}
	toPx := func(x, y float64) (float64, float64) {
		return (x + reach) * scale, (2*reach - (y + shift)) * scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	var last *pendulum.Snapshot
	var path strings.Builder
	for i := range samples {
		s := &samples[i]
		if !s.IsFinite() {
			break
		}
		x, y := toPx(s.X2, s.Y2)
		if last == nil {
			path.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		} else {
			path.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
		last = s
	}

	if last != nil {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, strokeColor, path.String()))

		px, py := toPx(0, reach-shift)
		x1, y1 := toPx(last.X1, last.Y1)
		x2, y2 := toPx(last.X2, last.Y2)
		r := math.Max(2, float64(size)/100)
		sb.WriteString(fmt.Sprintf(`<g stroke="#ffffff" stroke-width="2" fill="#ffffff">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<circle cx="%.1f" cy="%.1f" r="%.1f"/>
<circle cx="%.1f" cy="%.1f" r="%.1f"/>
</g>
`, px, py, x1, y1, x1, y1, x2, y2, x1, y1, r, x2, y2, r))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
