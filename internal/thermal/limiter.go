package thermal

import "github.com/hapticlab/envsynth/internal/scale"

// DefaultRange is the physical span, in degrees from baseline, that a
// normalized thermal envelope covers.
var DefaultRange = scale.Range{Min: -6, Max: 6}

// Limiter bounds each step of a normalized thermal envelope by what the
// actuator can physically achieve in one sample period. It satisfies
// envelope.SlopeLimiter.
type Limiter struct {
	Warming Coeffs
	Cooling Coeffs
	Range   scale.Range
}

// NewLimiter returns a limiter over DefaultRange.
func NewLimiter(warming, cooling Coeffs) *Limiter {
	return &Limiter{Warming: warming, Cooling: cooling, Range: DefaultRange}
}

// Limit returns the next normalized value reachable from prev towards
// desired within dt seconds. Bounds are evaluated at the previous
// temperature.
func (l *Limiter) Limit(prev, desired, dt float64) float64 {
	prevDeg := l.Range.Map(prev)
	delta := l.Range.Map(desired) - prevDeg
	lo, hi := Bounds(l.Warming, l.Cooling, prevDeg, dt)
	if delta > hi {
		delta = hi
	}
	if delta < lo {
		delta = lo
	}
	return l.Range.Unmap(prevDeg + delta)
}
