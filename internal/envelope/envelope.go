// Package envelope holds free-hand drawn control curves and derives their
// slope-limited output.
package envelope

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/hapticlab/envsynth/internal/scale"
)

const (
	DefaultLength        = 150
	DefaultTotalDuration = 10.0
	DefaultBaseline      = 0.5
)

var (
	ErrInvalidDuration = errors.New("envelope: invalid duration")
	ErrLength          = errors.New("envelope: sample count mismatch")
)

// SlopeLimiter decides the next output value given the previous output, the
// drawn value and the time covered by one sample.
type SlopeLimiter interface {
	Limit(prev, desired, dt float64) float64
}

// LimiterFunc adapts a plain function to SlopeLimiter.
type LimiterFunc func(prev, desired, dt float64) float64

func (f LimiterFunc) Limit(prev, desired, dt float64) float64 { return f(prev, desired, dt) }

type identity struct{}

func (identity) Limit(_, desired, _ float64) float64 { return desired }

// Identity passes the drawn value through unchanged.
var Identity SlopeLimiter = identity{}

// Sampler is the operation set a drawing surface drives.
type Sampler interface {
	Begin(x, y float64)
	Paint(x, y float64)
	PaintSegment(x0, y0, x1, y1 float64)
	Reset(value float64)
	Input() []float64
	Output() []float64
	SetTotalDuration(seconds float64) error
	SetActiveDuration(seconds float64) error
	TotalDuration() float64
	ActiveDuration() float64
	Len() int
}

var _ Sampler = (*Envelope)(nil)

// Option configures an Envelope.
type Option func(*Envelope)

// WithLength sets the number of samples. Non-positive values are ignored.
func WithLength(n int) Option {
	return func(e *Envelope) {
		if n > 0 {
			e.samples = make([]float64, n)
		}
	}
}

// WithBaseline sets the value the envelope is filled with and the output
// fold starts from.
func WithBaseline(v float64) Option {
	return func(e *Envelope) {
		e.baseline = scale.Clamp01(v)
	}
}

// WithTotalDuration sets the initial total (and active) duration. Invalid
// values are ignored.
func WithTotalDuration(seconds float64) Option {
	return func(e *Envelope) {
		if validDuration(seconds) {
			e.total, e.active = seconds, seconds
		}
	}
}

// WithLimiter installs the slope limiter used by Output.
func WithLimiter(l SlopeLimiter) Option {
	return func(e *Envelope) {
		e.limiter = l
	}
}

// Envelope is a fixed-length sequence of normalized samples spread evenly over
// a total duration, of which the leading active part is rendered.
type Envelope struct {
	samples  []float64
	baseline float64
	total    float64
	active   float64
	limiter  SlopeLimiter
	lastX    float64
	lastY    float64
}

// New creates an envelope filled with its baseline.
func New(opts ...Option) *Envelope {
	e := &Envelope{
		samples:  make([]float64, DefaultLength),
		baseline: DefaultBaseline,
		total:    DefaultTotalDuration,
		active:   DefaultTotalDuration,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.Reset(e.baseline)
	return e
}

func (e *Envelope) Len() int { return len(e.samples) }

// Baseline returns the value the output fold starts from.
func (e *Envelope) Baseline() float64 { return e.baseline }

// SetLimiter replaces the slope limiter; nil restores pass-through.
func (e *Envelope) SetLimiter(l SlopeLimiter) { e.limiter = l }

// Reset fills every sample with value.
func (e *Envelope) Reset(value float64) {
	value = scale.Clamp01(value)
	for i := range e.samples {
		e.samples[i] = value
	}
}

// FillRandomBand sets a random band of samples to a random level in
// [0.2, 1.0]. It only seeds placeholder curves.
func (e *Envelope) FillRandomBand(rng *rand.Rand) {
	r1, r2 := rng.Float64(), rng.Float64()
	low, high := math.Min(r1, r2), math.Max(r1, r2)
	value := rng.Float64()*0.8 + 0.2
	n := float64(len(e.samples))
	for x := n * low; x < n*high; x++ {
		e.samples[int(x)] = value
	}
}

// SetInput replaces all samples. Values are clamped into [0, 1].
func (e *Envelope) SetInput(samples []float64) error {
	if len(samples) != len(e.samples) {
		return fmt.Errorf("%w: got %d, want %d", ErrLength, len(samples), len(e.samples))
	}
	for i, v := range samples {
		e.samples[i] = scale.Clamp01(v)
	}
	return nil
}

// Input returns a copy of the drawn samples.
func (e *Envelope) Input() []float64 {
	return append([]float64(nil), e.samples...)
}

// Output returns the drawn samples folded through the installed limiter.
func (e *Envelope) Output() []float64 {
	return e.ComputeOutput(e.limiter)
}

// SecondsPerSample is the time one sample covers.
func (e *Envelope) SecondsPerSample() float64 {
	return e.total / float64(len(e.samples))
}

// ComputeOutput walks the samples in order, asking lim for each next value
// starting from the baseline. A nil limiter yields a copy of the input.
func (e *Envelope) ComputeOutput(lim SlopeLimiter) []float64 {
	out := e.Input()
	if lim == nil {
		return out
	}
	dt := e.SecondsPerSample()
	prev := e.baseline
	for i, desired := range e.samples {
		prev = lim.Limit(prev, desired, dt)
		out[i] = prev
	}
	return out
}

// SetTotalDuration sets the span covered by all samples and resets the active
// duration to match.
func (e *Envelope) SetTotalDuration(seconds float64) error {
	if !validDuration(seconds) {
		return fmt.Errorf("%w: total %v", ErrInvalidDuration, seconds)
	}
	e.total, e.active = seconds, seconds
	return nil
}

// SetActiveDuration sets the rendered prefix; it must not exceed the total.
func (e *Envelope) SetActiveDuration(seconds float64) error {
	if !validDuration(seconds) || seconds > e.total {
		return fmt.Errorf("%w: active %v with total %v", ErrInvalidDuration, seconds, e.total)
	}
	e.active = seconds
	return nil
}

func (e *Envelope) TotalDuration() float64 { return e.total }
func (e *Envelope) ActiveDuration() float64 { return e.active }

// Snapshot captures the output and durations at this instant.
func (e *Envelope) Snapshot() Snapshot {
	return Snapshot{
		Samples: e.Output(),
		Total:   e.total,
		Active:  e.active,
	}
}

// Snapshot is an immutable copy of an envelope's output and durations.
type Snapshot struct {
	Samples []float64
	Total   float64
	Active  float64
}

func (s Snapshot) Output() []float64 { return s.Samples }
func (s Snapshot) TotalDuration() float64 { return s.Total }
func (s Snapshot) ActiveDuration() float64 { return s.Active }

func validDuration(seconds float64) bool {
	return seconds > 0 && !math.IsInf(seconds, 0)
}
