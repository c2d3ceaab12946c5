package envsynth

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapticlab/envsynth/internal/thermal"
)

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	opts = append([]SessionOption{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	s, err := NewSession(opts...)
	require.NoError(t, err)
	return s
}

func TestNewSessionRejectsMissingCalibration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RiseCoeffs = thermal.Coeffs{}
	_, err := NewSession(WithConfig(cfg))
	require.ErrorIs(t, err, thermal.ErrInvalidCoeffs)
}

func TestSessionStartsAtBaseline(t *testing.T) {
	s := newTestSession(t)
	for _, k := range Kinds {
		in, err := s.Input(k)
		require.NoError(t, err)
		require.Len(t, in, 150)
		for _, v := range in {
			require.Equal(t, 0.5, v)
		}
	}
	assert.Equal(t, 10.0, s.TotalDuration())
	assert.Equal(t, 10.0, s.ActiveDuration())
}

func TestSessionOnlyThermalIsLimited(t *testing.T) {
	s := newTestSession(t)
	for _, k := range Kinds {
		require.NoError(t, s.Reset(k, 1))
	}
	amp, err := s.Output(VibrationAmplitude)
	require.NoError(t, err)
	assert.Equal(t, 1.0, amp[0])

	thr, err := s.Output(ThermalAmplitude)
	require.NoError(t, err)
	assert.Less(t, thr[0], 1.0)
	assert.Greater(t, thr[0], 0.5)
	for i := 1; i < len(thr); i++ {
		require.GreaterOrEqual(t, thr[i], thr[i-1]-1e-12)
	}
}

func TestSessionLimiterUsesRiseFitBothWays(t *testing.T) {
	s := newTestSession(t)
	lim := s.Limiter()
	assert.Equal(t, thermal.DefaultRiseCoeffs, lim.Warming)
	assert.Equal(t, thermal.DefaultRiseCoeffs, lim.Cooling)
	assert.Equal(t, DefaultConfig().Thermal, lim.Range)
}

func TestSessionPaintDrag(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Begin(VibrationAmplitude, 0, 0))
	require.NoError(t, s.Paint(VibrationAmplitude, 0.5, 1))
	in, err := s.Input(VibrationAmplitude)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, in[0], 1e-12)
	assert.InDelta(t, 1.0, in[75], 1e-12)
	assert.Equal(t, 0.5, in[76])
}

func TestSessionUnknownKind(t *testing.T) {
	s := newTestSession(t)
	require.ErrorIs(t, s.Reset(Kind(7), 1), ErrUnknownKind)
	_, err := s.Output(Kind(-1))
	require.ErrorIs(t, err, ErrUnknownKind)

	k, err := ParseKind("vib_freq")
	require.NoError(t, err)
	assert.Equal(t, VibrationFrequency, k)
	_, err = ParseKind("nope")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestSessionDurations(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetActiveDuration(4))
	assert.Equal(t, 4.0, s.ActiveDuration())

	require.NoError(t, s.SetTotalDuration(8))
	assert.Equal(t, 8.0, s.TotalDuration())
	assert.Equal(t, 8.0, s.ActiveDuration())

	require.Error(t, s.SetActiveDuration(9))
	require.Error(t, s.SetActiveDuration(0))
	require.Error(t, s.SetTotalDuration(math.NaN()))
	assert.Equal(t, 8.0, s.ActiveDuration())
}

func TestSessionGenerate(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Reset(VibrationAmplitude, 1))
	require.NoError(t, s.SetActiveDuration(2))

	sig, err := s.Generate(false)
	require.NoError(t, err)
	assert.Equal(t, 20000, sig.Samples())
	assert.Len(t, sig.Thermal, 20000)
	assert.Equal(t, 2.0, sig.Duration)
	assert.Equal(t, 10.0, sig.TotalDuration)
	assert.Len(t, sig.VibAmp, 150)

	full, err := s.Generate(true)
	require.NoError(t, err)
	assert.Equal(t, 100000, full.Samples())
}

func TestSessionGenerateDurationMismatch(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetDuration(ThermalAmplitude, 12, 12))
	_, err := s.Generate(false)
	require.ErrorIs(t, err, ErrDurationMismatch)

	require.NoError(t, s.SetTotalDuration(12))
	_, err = s.Generate(false)
	require.NoError(t, err)
}

func TestSessionRandomize(t *testing.T) {
	s := newTestSession(t)
	s.Randomize()
	for _, k := range Kinds {
		in, err := s.Input(k)
		require.NoError(t, err)
		for _, v := range in {
			require.True(t, v == 0 || (v >= 0.2 && v <= 1), "value %v", v)
		}
	}
	require.NoError(t, s.FillRandomBand(ThermalAmplitude))
}

func TestSessionConcurrentUse(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetTotalDuration(0.5))
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				x := float64(j) / 20
				_ = s.PaintSegment(Kinds[i%len(Kinds)], x, 0, x+0.05, 1)
				if _, err := s.Generate(false); err != nil {
					t.Errorf("generate: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
