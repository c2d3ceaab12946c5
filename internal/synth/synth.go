package synth

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/hapticlab/envsynth/internal/osc"
	"github.com/hapticlab/envsynth/internal/scale"
	"github.com/hapticlab/envsynth/internal/thermal"
)

var (
	ErrDurationMismatch = errors.New("synth: envelopes disagree on duration")
	ErrInvalidDuration  = errors.New("synth: duration must be positive")
	ErrInvalidParams    = errors.New("synth: invalid parameters")
)

// Params controls waveform synthesis.
type Params struct {
	SampleRate int
	Freq       scale.Range // vibration frequency span in Hz
	Thermal    scale.Range // thermal span in degrees from baseline
}

// DefaultParams returns the rig's output settings.
func DefaultParams() Params {
	return Params{
		SampleRate: 10000,
		Freq:       scale.Range{Min: 50, Max: 500},
		Thermal:    thermal.DefaultRange,
	}
}

// Validate reports unusable parameters.
func (p Params) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, p.SampleRate)
	}
	if !p.Freq.Valid() {
		return fmt.Errorf("%w: frequency range %v", ErrInvalidParams, p.Freq)
	}
	if !p.Thermal.Valid() {
		return fmt.Errorf("%w: thermal range %v", ErrInvalidParams, p.Thermal)
	}
	return nil
}

// Source is a normalized envelope with its timing.
type Source interface {
	Output() []float64
	TotalDuration() float64
	ActiveDuration() float64
}

// Waveform holds the rendered vibration and thermal channels.
type Waveform struct {
	Vibration  []float32
	Thermal    []float32
	Duration   float64 // seconds actually rendered
	SampleRate int
}

// Samples returns the number of samples per channel.
func (w Waveform) Samples() int { return len(w.Vibration) }

// Synthesize renders the vibration and thermal channels from three envelopes.
// All three must agree on total and active duration. Only the active prefix
// is rendered unless forceFull is set.
func Synthesize(p Params, vibAmp, vibFreq, thr Source, forceFull bool) (Waveform, error) {
	if err := p.Validate(); err != nil {
		return Waveform{}, err
	}
	total := vibAmp.TotalDuration()
	if total != vibFreq.TotalDuration() || total != thr.TotalDuration() {
		return Waveform{}, fmt.Errorf("%w: total %v, %v, %v", ErrDurationMismatch,
			total, vibFreq.TotalDuration(), thr.TotalDuration())
	}
	active := vibAmp.ActiveDuration()
	if active != vibFreq.ActiveDuration() || active != thr.ActiveDuration() {
		return Waveform{}, fmt.Errorf("%w: active %v, %v, %v", ErrDurationMismatch,
			active, vibFreq.ActiveDuration(), thr.ActiveDuration())
	}
	if !(total > 0) || !(active > 0) {
		return Waveform{}, fmt.Errorf("%w: total %v active %v", ErrInvalidDuration, total, active)
	}
	if forceFull {
		active = total
	}
	return render(p, vibAmp.Output(), vibFreq.Output(), thr.Output(), total, active), nil
}

// SampleCount returns floor(seconds * sampleRate).
func SampleCount(seconds float64, sampleRate int) int {
	n := math.Floor(seconds * float64(sampleRate))
	if !(n > 0) {
		return 0
	}
	return int(n)
}

func render(p Params, amps, freqs, thrs []float64, total, active float64) Waveform {
	n := SampleCount(active, p.SampleRate)
	activePerc := active / total

	amp := make([]float64, n)
	freq := make([]float64, n)
	heat := make([]float32, n)
	for i := 0; i < n; i++ {
		lperc := float64(i) / float64(n) * activePerc
		amp[i] = Interp(amps, lperc)
		freq[i] = p.Freq.Map(Interp(freqs, lperc))
		heat[i] = float32(p.Thermal.Map(Interp(thrs, lperc)))
	}

	carrier := make([]float64, n)
	var o osc.Sine
	o.Fill(carrier, freq, float64(p.SampleRate))
	vibration := make([]float64, n)
	vecmath.MulBlock(vibration, amp, carrier)

	return Waveform{
		Vibration:  toFloat32(vibration),
		Thermal:    heat,
		Duration:   active,
		SampleRate: p.SampleRate,
	}
}

// Interp reads arr at fractional position perc in [0, 1], blending the two
// neighbouring samples linearly.
func Interp(arr []float64, perc float64) float64 {
	switch len(arr) {
	case 0:
		return 0
	case 1:
		return arr[0]
	}
	last := len(arr) - 1
	index := perc * float64(last)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	lower = min(max(lower, 0), last)
	upper = min(max(upper, 0), last)
	weight := index - float64(lower)
	return arr[lower]*(1-weight) + arr[upper]*weight
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
