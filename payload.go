package envsynth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidPayload = errors.New("envsynth: invalid payload")

// Payload is the JSON document handed to the actuator rig. The play request
// carries the thermal signal as thr_amp, the submitted result as
// thermal_signal; exactly one of the two is set.
type Payload struct {
	VibSignal     []float32 `json:"vib_signal"`
	VibAmp        []float64 `json:"vib_amp"`
	VibFreq       []float64 `json:"vib_freq"`
	ThrAmp        []float32 `json:"thr_amp,omitempty"`
	ThermalSignal []float32 `json:"thermal_signal,omitempty"`
	SampleRate    int       `json:"sample_rate"`
	// Duration is the total envelope duration in seconds.
	Duration float64 `json:"duration"`
}

// PlayPayload builds the play request form of sig.
func PlayPayload(sig Signal) Payload {
	p := basePayload(sig)
	p.ThrAmp = sig.Thermal
	return p
}

// ResultPayload builds the submitted result form of sig.
func ResultPayload(sig Signal) Payload {
	p := basePayload(sig)
	p.ThermalSignal = sig.Thermal
	return p
}

func basePayload(sig Signal) Payload {
	return Payload{
		VibSignal:  sig.Vibration,
		VibAmp:     sig.VibAmp,
		VibFreq:    sig.VibFreq,
		SampleRate: sig.SampleRate,
		Duration:   sig.TotalDuration,
	}
}

// Thermal returns whichever thermal channel the payload carries.
func (p Payload) Thermal() []float32 {
	if p.ThrAmp != nil {
		return p.ThrAmp
	}
	return p.ThermalSignal
}

// Signal rebuilds the rendered signal. The rendered duration is derived from
// the sample count.
func (p Payload) Signal() Signal {
	sig := Signal{
		VibAmp:        p.VibAmp,
		VibFreq:       p.VibFreq,
		TotalDuration: p.Duration,
	}
	sig.Vibration = p.VibSignal
	sig.Thermal = p.Thermal()
	sig.SampleRate = p.SampleRate
	if p.SampleRate > 0 {
		sig.Duration = float64(len(p.VibSignal)) / float64(p.SampleRate)
	}
	return sig
}

func (p Payload) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrInvalidPayload, p.SampleRate)
	}
	if p.ThrAmp != nil && p.ThermalSignal != nil {
		return fmt.Errorf("%w: both thr_amp and thermal_signal set", ErrInvalidPayload)
	}
	if thr := p.Thermal(); thr != nil && len(thr) != len(p.VibSignal) {
		return fmt.Errorf("%w: %d vibration samples but %d thermal", ErrInvalidPayload, len(p.VibSignal), len(thr))
	}
	return nil
}

func (p Payload) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

// DecodePayload reads and validates one payload document.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}
