package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterClampsLargeJump(t *testing.T) {
	l := NewLimiter(DefaultRiseCoeffs, DefaultRiseCoeffs)
	dt := 10.0 / 150

	up := l.Limit(0.5, 1, dt)
	want := 0.5 + MaxChange(DefaultRiseCoeffs, 0, dt, Warming)/12
	assert.InDelta(t, want, up, 1e-12)

	down := l.Limit(0.5, 0, dt)
	want = 0.5 - MaxChange(DefaultRiseCoeffs, 0, dt, Cooling)/12
	assert.InDelta(t, want, down, 1e-12)
}

func TestLimiterPassesSmallSteps(t *testing.T) {
	l := NewLimiter(DefaultRiseCoeffs, DefaultReturnCoeffs)
	assert.InDelta(t, 0.501, l.Limit(0.5, 0.501, 10.0/150), 1e-12)
	assert.InDelta(t, 0.3, l.Limit(0.3, 0.3, 10.0/150), 1e-12)
}

func TestLimiterEvaluatesAtPreviousTemperature(t *testing.T) {
	l := NewLimiter(DefaultRiseCoeffs, DefaultRiseCoeffs)
	dt := 10.0 / 150
	prev := 0.9 // 4.8 degrees
	got := l.Limit(prev, 1, dt)
	want := l.Range.Unmap(l.Range.Map(prev) + MaxChange(DefaultRiseCoeffs, 4.8, dt, Warming))
	assert.InDelta(t, want, got, 1e-12)
}
