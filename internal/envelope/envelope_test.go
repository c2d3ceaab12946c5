package envelope

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	e := New()
	require.Equal(t, DefaultLength, e.Len())
	assert.Equal(t, DefaultTotalDuration, e.TotalDuration())
	assert.Equal(t, DefaultTotalDuration, e.ActiveDuration())
	for _, v := range e.Input() {
		assert.Equal(t, DefaultBaseline, v)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	e := New(WithLength(0), WithTotalDuration(-3), nil)
	assert.Equal(t, DefaultLength, e.Len())
	assert.Equal(t, DefaultTotalDuration, e.TotalDuration())

	e = New(WithLength(8), WithBaseline(0.25), WithTotalDuration(4))
	assert.Equal(t, 8, e.Len())
	assert.Equal(t, 0.25, e.Input()[7])
	assert.Equal(t, 0.5, e.SecondsPerSample())
}

func TestOutputWithoutLimiterIsCopy(t *testing.T) {
	e := New(WithLength(5))
	require.NoError(t, e.SetInput([]float64{0, 0.2, 0.9, 1, 0.4}))

	out := e.Output()
	assert.Equal(t, e.Input(), out)

	out[0] = 0.77
	assert.Equal(t, 0.0, e.Input()[0], "output must not alias the samples")
}

func TestIdentityLimiterMatchesInput(t *testing.T) {
	e := New(WithLength(5), WithLimiter(Identity))
	require.NoError(t, e.SetInput([]float64{0, 0.2, 0.9, 1, 0.4}))
	assert.Equal(t, e.Input(), e.Output())
}

func TestComputeOutputFoldsFromBaseline(t *testing.T) {
	e := New(WithLength(4), WithBaseline(0.5), WithTotalDuration(2))
	require.NoError(t, e.SetInput([]float64{1, 1, 0, 0}))

	var dts []float64
	step := LimiterFunc(func(prev, desired, dt float64) float64 {
		dts = append(dts, dt)
		if desired > prev {
			return min(desired, prev+0.2)
		}
		return max(desired, prev-0.2)
	})
	out := e.ComputeOutput(step)
	want := []float64{0.7, 0.9, 0.7, 0.5}
	for i := range want {
		assert.InDelta(t, want[i], out[i], 1e-12, "index %d", i)
	}
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, dts)
}

func TestSetInputValidatesLength(t *testing.T) {
	e := New(WithLength(3))
	require.ErrorIs(t, e.SetInput([]float64{1}), ErrLength)
	require.NoError(t, e.SetInput([]float64{-1, 0.5, 2}))
	assert.Equal(t, []float64{0, 0.5, 1}, e.Input())
}

func TestDurations(t *testing.T) {
	e := New()
	require.NoError(t, e.SetTotalDuration(6))
	assert.Equal(t, 6.0, e.ActiveDuration())

	require.NoError(t, e.SetActiveDuration(2.5))
	assert.Equal(t, 2.5, e.ActiveDuration())
	assert.Equal(t, 6.0, e.TotalDuration())

	require.NoError(t, e.SetTotalDuration(8))
	assert.Equal(t, 8.0, e.ActiveDuration(), "total resets active")

	for _, bad := range []float64{0, -1, 9} {
		require.ErrorIs(t, e.SetActiveDuration(bad), ErrInvalidDuration, "active %v", bad)
	}
	require.ErrorIs(t, e.SetTotalDuration(0), ErrInvalidDuration)
	assert.Equal(t, 8.0, e.TotalDuration())
}

func TestFillRandomBand(t *testing.T) {
	e := New(WithBaseline(0))
	e.FillRandomBand(rand.New(rand.NewPCG(1, 2)))

	var band []int
	level := -1.0
	for i, v := range e.Input() {
		if v == 0 {
			continue
		}
		band = append(band, i)
		if level < 0 {
			level = v
		}
		assert.Equal(t, level, v)
	}
	require.NotEmpty(t, band)
	assert.GreaterOrEqual(t, level, 0.2)
	assert.LessOrEqual(t, level, 1.0)
	for k := 1; k < len(band); k++ {
		assert.Equal(t, band[k-1]+1, band[k], "band must be contiguous")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	e := New(WithLength(4))
	snap := e.Snapshot()
	e.Reset(1)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, snap.Output())
	assert.Equal(t, e.TotalDuration(), snap.TotalDuration())
	assert.Equal(t, e.ActiveDuration(), snap.ActiveDuration())
}
