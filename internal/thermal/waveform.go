package thermal

import "math"

const (
	// DefaultWaveformRate is the control rate, in Hz, of generated thermal
	// waveforms.
	DefaultWaveformRate = 10.0
	// DefaultRelaxFactor loosens the slope bound applied by LimitGradient.
	DefaultRelaxFactor = 1.5
)

// Waveform builds a rise/hold/return trajectory towards delta degrees that
// lasts exactly floor(duration*rate) samples. Ramp lengths come from the rise
// and return fits; whatever does not fit is truncated, whatever is left over
// is zero padded.
func Waveform(delta float64, rise, ret Coeffs, duration, rate float64) []float64 {
	total := sampleCount(duration, rate)
	out := make([]float64, total)
	if delta == 0 || total == 0 {
		return out
	}

	riseSamples := sampleCount(RiseTime(rise, delta), rate)
	returnSamples := sampleCount(ReturnTime(ret, delta), rate)
	holdSamples := max(0, total-riseSamples-returnSamples)

	i := 0
	for k := 0; k < riseSamples && i < total; k++ {
		out[i] = float64(k) / float64(riseSamples) * delta
		i++
	}
	for k := 0; k < holdSamples && i < total; k++ {
		out[i] = delta
		i++
	}
	for k := 0; k < returnSamples && i < total; k++ {
		out[i] = delta * (1 - float64(k)/float64(returnSamples))
		i++
	}
	return out
}

// LimitGradient returns a copy of samples whose sample-to-sample steps are
// clipped to the slope implied by the rise and return times for delta. Steps
// moving in the direction of delta use the rise bound, all others the return
// bound.
func LimitGradient(samples []float64, delta float64, rise, ret Coeffs, duration, rate, relax float64) []float64 {
	out := append([]float64(nil), samples...)
	riseTime := RiseTime(rise, delta)
	returnTime := ReturnTime(ret, delta)
	if !positiveFinite(riseTime) || !positiveFinite(returnTime) || !positiveFinite(rate) {
		return out
	}

	mag := math.Abs(delta)
	maxRiseStep := (mag / riseTime) * (duration / riseTime) * relax / rate
	maxReturnStep := (mag / returnTime) * (duration / returnTime) * relax / rate

	for i := 1; i < len(out); i++ {
		dy := out[i] - out[i-1]
		step := maxReturnStep
		if sign(dy) == sign(delta) {
			step = maxRiseStep
		}
		if math.Abs(dy) > step {
			out[i] = out[i-1] + sign(dy)*step
		}
	}
	return out
}

func sampleCount(seconds, rate float64) int {
	n := math.Floor(seconds * rate)
	if !(n > 0) || math.IsInf(n, 0) {
		return 0
	}
	return int(n)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
