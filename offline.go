package envsynth

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/hapticlab/envsynth/internal/scale"
	"github.com/hapticlab/envsynth/internal/synth"
	"github.com/hapticlab/envsynth/internal/thermal"
)

// signalStreamer plays the vibration channel on the left and the thermal
// channel, normalized by the largest thermal excursion, on the right.
type signalStreamer struct {
	vib, thr []float32
	thrScale float64
	pos      int
}

func newSignalStreamer(sig Signal, thermalRange scale.Range) *signalStreamer {
	s := &signalStreamer{vib: sig.Vibration, thr: sig.Thermal}
	if m := math.Max(math.Abs(thermalRange.Min), math.Abs(thermalRange.Max)); m > 0 {
		s.thrScale = 1 / m
	}
	return s
}

func (s *signalStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.pos >= len(s.vib) {
			return i, i > 0
		}
		samples[i][0] = clampUnit(float64(s.vib[s.pos]))
		if s.pos < len(s.thr) {
			samples[i][1] = clampUnit(float64(s.thr[s.pos]) * s.thrScale)
		} else {
			samples[i][1] = 0
		}
		s.pos++
	}
	return len(samples), true
}

func (s *signalStreamer) Err() error { return nil }

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// WriteWAV encodes sig as a 16-bit stereo WAV at its own sample rate.
func WriteWAV(w io.WriteSeeker, sig Signal, thermalRange scale.Range) error {
	if sig.SampleRate <= 0 {
		return fmt.Errorf("write wav: sample rate %d", sig.SampleRate)
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sig.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, newSignalStreamer(sig, thermalRange), format); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// SaveWAV writes sig to path, replacing any existing file.
func SaveWAV(path string, sig Signal, thermalRange scale.Range) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, sig, thermalRange); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ThermalControl resamples the thermal channel of sig to rate Hz, the form
// the actuator controller consumes. Values are rounded to 0.01 degrees.
func (sig Signal) ThermalControl(rate float64) []float64 {
	n := int(math.Floor(sig.Duration * rate))
	if n <= 0 || len(sig.Thermal) == 0 {
		return nil
	}
	src := make([]float64, len(sig.Thermal))
	for i, v := range sig.Thermal {
		src[i] = float64(v)
	}
	out := make([]float64, n)
	for i := range out {
		v := synth.Interp(src, float64(i)/float64(n))
		out[i] = math.Round(v*100) / 100
	}
	return out
}

// ThermalStep builds the rise/hold/return trajectory for a step of delta
// degrees lasting duration seconds, sampled at the configured waveform rate
// and clipped by the relaxed gradient bound.
func (c Config) ThermalStep(delta, duration float64) []float64 {
	w := thermal.Waveform(delta, c.RiseCoeffs, c.ReturnCoeffs, duration, c.WaveformRate)
	return thermal.LimitGradient(w, delta, c.RiseCoeffs, c.ReturnCoeffs, duration, c.WaveformRate, c.RelaxFactor)
}
