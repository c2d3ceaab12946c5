package osc

import "math"

const twoPi = math.Pi * 2

// Sine is a phase-accumulating sine oscillator. The phase is integrated from
// the instantaneous frequency of every sample, so the output stays continuous
// while the frequency changes from one sample to the next.
type Sine struct {
	phase float64 // current phase in cycles, [0, 1)
}

// Sample advances the phase by freqHz/sampleRate cycles and returns the sine
// of the new phase. Returns 0 without advancing if sampleRate is not positive.
func (o *Sine) Sample(freqHz, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	o.phase += freqHz / sampleRate
	o.phase -= math.Floor(o.phase) // keep in [0, 1)
	return math.Sin(twoPi * o.phase)
}

// Fill writes one sample per entry of freqs into dst, which must be at least
// as long as freqs.
func (o *Sine) Fill(dst, freqs []float64, sampleRate float64) {
	for i, f := range freqs {
		dst[i] = o.Sample(f, sampleRate)
	}
}

// Phase returns the current phase in cycles.
func (o *Sine) Phase() float64 { return o.phase }

// Reset zeros the phase.
func (o *Sine) Reset() {
	o.phase = 0
}
