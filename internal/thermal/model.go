// Package thermal models how fast the thermal actuator can change temperature.
package thermal

import "math"

// Coeffs parameterizes f(Δ) = A + B|Δ| + CΔ², the fitted time in seconds the
// actuator needs for a transition of magnitude Δ degrees.
type Coeffs struct {
	A, B, C float64
}

// Direction selects the warming or cooling branch of the response model.
type Direction int

const (
	Warming Direction = iota
	Cooling
)

func (d Direction) String() string {
	if d == Cooling {
		return "cooling"
	}
	return "warming"
}

// Eval evaluates the polynomial. The linear term uses |Δ| and the quadratic
// term the raw Δ², which keeps warming and cooling fits independent.
func (c Coeffs) Eval(delta float64) float64 {
	return c.A + c.B*math.Abs(delta) + c.C*delta*delta
}

// RiseTime estimates how long warming by delta takes.
func RiseTime(c Coeffs, delta float64) float64 { return c.Eval(delta) }

// ReturnTime estimates how long returning from delta to baseline takes.
func ReturnTime(c Coeffs, delta float64) float64 { return c.Eval(delta) }

// MaxSlopeAt returns the instantaneous maximum |dT/dt| at offset delta from
// the baseline.
func MaxSlopeAt(c Coeffs, delta float64) float64 {
	return 1 / (c.B + 2*c.C*math.Abs(delta))
}

// MaxChange returns the largest temperature change, as a magnitude, reachable
// from |delta0| within dt seconds. It solves dT/dx = ±1/(b + 2cT), T(0) = T0
// in closed form:
//
//	(sqrt((b + 2cT0)² ± 4c·dt) − (b + 2cT0)) / (2c)
//
// A negative radicand occurs near the physical limits of the fit; that and any
// other non-finite result is reported as 0.
func MaxChange(c Coeffs, delta0, dt float64, dir Direction) float64 {
	t0 := math.Abs(delta0)
	slope := c.B + 2*c.C*t0
	sign := 1.0
	if dir == Cooling {
		sign = -1
	}
	var change float64
	if c.C == 0 {
		// limit of the closed form as c -> 0
		change = sign * dt / c.B
	} else {
		change = (math.Sqrt(slope*slope+sign*4*c.C*dt) - slope) / (2 * c.C)
	}
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0
	}
	return math.Abs(change)
}

// Bounds returns the admissible temperature delta [lo, hi] for one step of dt
// seconds starting at delta0. hi comes from the warming curve, lo from the
// cooling curve.
func Bounds(warming, cooling Coeffs, delta0, dt float64) (lo, hi float64) {
	hi = MaxChange(warming, delta0, dt, Warming)
	lo = -MaxChange(cooling, delta0, dt, Cooling)
	return lo, hi
}
