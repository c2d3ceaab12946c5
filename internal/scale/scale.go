package scale

import "math"

// Range is a closed physical interval that normalized [0, 1] values map onto.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Map converts a normalized value in [0, 1] into the range.
func (r Range) Map(v float64) float64 {
	return Linear(v, 0, 1, r.Min, r.Max)
}

// Unmap converts a value in the range back to normalized units.
func (r Range) Unmap(v float64) float64 {
	return Linear(v, r.Min, r.Max, 0, 1)
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Valid reports whether the range has a non-zero, finite span.
func (r Range) Valid() bool {
	s := r.Span()
	return s != 0 && !math.IsNaN(s) && !math.IsInf(s, 0)
}

// Linear maps value from [origMin, origMax] onto [newMin, newMax].
// A degenerate source interval maps everything to newMin.
func Linear(value, origMin, origMax, newMin, newMax float64) float64 {
	if origMax == origMin {
		return newMin
	}
	return newMin + (newMax-newMin)*((value-origMin)/(origMax-origMin))
}

// Clamp01 limits v to [0, 1]. NaN becomes 0.
func Clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
