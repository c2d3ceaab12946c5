package envsynth

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/hapticlab/envsynth/internal/envelope"
	"github.com/hapticlab/envsynth/internal/synth"
	"github.com/hapticlab/envsynth/internal/thermal"
)

// ErrDurationMismatch is returned by Generate when the envelopes disagree on
// their total or active duration.
var ErrDurationMismatch = synth.ErrDurationMismatch

var ErrUnknownKind = errors.New("envsynth: unknown envelope kind")

// Kind names one of the three envelopes a session owns.
type Kind int

const (
	VibrationAmplitude Kind = iota
	VibrationFrequency
	ThermalAmplitude
	numKinds
)

// Kinds lists every envelope kind in payload order.
var Kinds = [...]Kind{VibrationAmplitude, VibrationFrequency, ThermalAmplitude}

func (k Kind) String() string {
	switch k {
	case VibrationAmplitude:
		return "vib_amp"
	case VibrationFrequency:
		return "vib_freq"
	case ThermalAmplitude:
		return "thr_amp"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names String returns.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	cfg Config
	rng *rand.Rand
}

func WithConfig(cfg Config) SessionOption {
	return func(sc *sessionConfig) {
		sc.cfg = cfg
	}
}

// WithRand sets the generator used by FillRandomBand.
func WithRand(rng *rand.Rand) SessionOption {
	return func(sc *sessionConfig) {
		sc.rng = rng
	}
}

// Session owns the vibration amplitude, vibration frequency and thermal
// envelopes of one authoring session. All methods are safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	cfg     Config
	rng     *rand.Rand
	limiter *thermal.Limiter
	envs    [numKinds]*envelope.Envelope
}

// NewSession validates the configuration, including both calibration
// triples, and creates three envelopes at the configured baseline.
func NewSession(opts ...SessionOption) (*Session, error) {
	sc := sessionConfig{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&sc)
	}
	if err := sc.cfg.Validate(); err != nil {
		return nil, err
	}
	if sc.rng == nil {
		sc.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cfg := sc.cfg

	// The rig limits both directions with the warming fit.
	lim := thermal.NewLimiter(cfg.RiseCoeffs, cfg.RiseCoeffs)
	lim.Range = cfg.Thermal

	s := &Session{cfg: cfg, rng: sc.rng, limiter: lim}
	for _, k := range Kinds {
		eopts := []envelope.Option{
			envelope.WithLength(cfg.EnvelopeLength),
			envelope.WithBaseline(cfg.Baseline),
			envelope.WithTotalDuration(cfg.TotalDuration),
		}
		if k == ThermalAmplitude {
			eopts = append(eopts, envelope.WithLimiter(lim))
		}
		s.envs[k] = envelope.New(eopts...)
	}
	return s, nil
}

func (s *Session) Config() Config { return s.cfg }

// Limiter returns the slope limiter applied to the thermal envelope.
func (s *Session) Limiter() *thermal.Limiter { return s.limiter }

func (s *Session) env(k Kind) (*envelope.Envelope, error) {
	if k < 0 || k >= numKinds {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return s.envs[k], nil
}

// with runs fn on the envelope of kind k while holding the session lock.
func (s *Session) with(k Kind, fn func(e *envelope.Envelope) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.env(k)
	if err != nil {
		return err
	}
	return fn(e)
}

// Begin places the paint cursor of k without drawing.
func (s *Session) Begin(k Kind, x, y float64) error {
	return s.with(k, func(e *envelope.Envelope) error {
		e.Begin(x, y)
		return nil
	})
}

// Paint draws from the cursor of k to (x, y).
func (s *Session) Paint(k Kind, x, y float64) error {
	return s.with(k, func(e *envelope.Envelope) error {
		e.Paint(x, y)
		return nil
	})
}

func (s *Session) PaintSegment(k Kind, x0, y0, x1, y1 float64) error {
	return s.with(k, func(e *envelope.Envelope) error {
		e.PaintSegment(x0, y0, x1, y1)
		return nil
	})
}

func (s *Session) Reset(k Kind, value float64) error {
	return s.with(k, func(e *envelope.Envelope) error {
		e.Reset(value)
		return nil
	})
}

func (s *Session) SetInput(k Kind, samples []float64) error {
	return s.with(k, func(e *envelope.Envelope) error {
		return e.SetInput(samples)
	})
}

func (s *Session) FillRandomBand(k Kind) error {
	return s.with(k, func(e *envelope.Envelope) error {
		e.FillRandomBand(s.rng)
		return nil
	})
}

// Randomize resets every envelope to zero and fills one random band in each.
func (s *Session) Randomize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.envs {
		e.Reset(0)
		e.FillRandomBand(s.rng)
	}
}

func (s *Session) Input(k Kind) ([]float64, error) {
	var out []float64
	err := s.with(k, func(e *envelope.Envelope) error {
		out = e.Input()
		return nil
	})
	return out, err
}

// Output returns the slope-limited samples of k.
func (s *Session) Output(k Kind) ([]float64, error) {
	var out []float64
	err := s.with(k, func(e *envelope.Envelope) error {
		out = e.Output()
		return nil
	})
	return out, err
}

// SetTotalDuration sets the total duration of every envelope, which also
// resets their active duration.
func (s *Session) SetTotalDuration(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.envs {
		if err := e.SetTotalDuration(seconds); err != nil {
			return err
		}
	}
	return nil
}

// SetActiveDuration sets the rendered prefix of every envelope. Nothing
// changes if any envelope rejects the value.
func (s *Session) SetActiveDuration(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := make([]float64, len(s.envs))
	for i, e := range s.envs {
		prev[i] = e.ActiveDuration()
		if err := e.SetActiveDuration(seconds); err != nil {
			for j := 0; j < i; j++ {
				_ = s.envs[j].SetActiveDuration(prev[j])
			}
			return err
		}
	}
	return nil
}

// SetDuration sets total and active duration on a single envelope, leaving
// the others alone. Generate rejects the session until they agree again.
func (s *Session) SetDuration(k Kind, total, active float64) error {
	return s.with(k, func(e *envelope.Envelope) error {
		if err := e.SetTotalDuration(total); err != nil {
			return err
		}
		return e.SetActiveDuration(active)
	})
}

func (s *Session) TotalDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.envs[VibrationAmplitude].TotalDuration()
}

func (s *Session) ActiveDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.envs[VibrationAmplitude].ActiveDuration()
}

// Signal is one synthesis result together with the envelopes it came from.
type Signal struct {
	synth.Waveform
	// Input samples as drawn, before slope limiting.
	VibAmp     []float64
	VibFreq    []float64
	ThermalAmp []float64
	// TotalDuration of the envelopes; Duration is what was rendered.
	TotalDuration float64
}

// Generate snapshots all three envelopes under the session lock and
// synthesizes outside it. With forceFull the whole total duration is
// rendered instead of the active prefix.
func (s *Session) Generate(forceFull bool) (Signal, error) {
	s.mu.Lock()
	amp := s.envs[VibrationAmplitude].Snapshot()
	freq := s.envs[VibrationFrequency].Snapshot()
	thr := s.envs[ThermalAmplitude].Snapshot()
	sig := Signal{
		VibAmp:        s.envs[VibrationAmplitude].Input(),
		VibFreq:       s.envs[VibrationFrequency].Input(),
		ThermalAmp:    s.envs[ThermalAmplitude].Input(),
		TotalDuration: amp.Total,
	}
	s.mu.Unlock()

	w, err := synth.Synthesize(s.cfg.SynthParams(), amp, freq, thr, forceFull)
	if err != nil {
		return Signal{}, err
	}
	sig.Waveform = w
	return sig, nil
}
