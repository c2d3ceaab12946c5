package envelope

import (
	"math"

	"github.com/hapticlab/envsynth/internal/scale"
)

// Begin places the paint cursor without touching any sample.
func (e *Envelope) Begin(x, y float64) {
	e.lastX, e.lastY = scale.Clamp01(x), scale.Clamp01(y)
}

// Paint draws from the cursor to (x, y) and moves the cursor there.
func (e *Envelope) Paint(x, y float64) {
	x, y = scale.Clamp01(x), scale.Clamp01(y)
	e.PaintSegment(e.lastX, e.lastY, x, y)
	e.lastX, e.lastY = x, y
}

// Cursor returns the last painted point.
func (e *Envelope) Cursor() (x, y float64) { return e.lastX, e.lastY }

// PaintSegment overwrites the samples between two normalized points with a
// straight line. The result does not depend on the order of the points.
func (e *Envelope) PaintSegment(x0, y0, x1, y1 float64) {
	if len(e.samples) == 0 {
		return
	}
	i0, i1 := e.index(x0), e.index(x1)
	y0, y1 = scale.Clamp01(y0), scale.Clamp01(y1)

	if i0 == i1 {
		e.samples[i0] = (y0 + y1) / 2
		return
	}
	lo, ylo, hi, yhi := i0, y0, i1, y1
	if i1 < i0 {
		lo, ylo, hi, yhi = i1, y1, i0, y0
	}
	span := float64(hi - lo)
	for i := lo; i <= hi; i++ {
		perc := float64(i-lo) / span
		e.samples[i] = ylo + perc*(yhi-ylo)
	}
}

func (e *Envelope) index(x float64) int {
	i := int(math.Floor(scale.Clamp01(x) * float64(len(e.samples))))
	return min(i, len(e.samples)-1)
}
