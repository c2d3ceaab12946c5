package envsynth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hapticlab/envsynth/internal/envelope"
	"github.com/hapticlab/envsynth/internal/scale"
	"github.com/hapticlab/envsynth/internal/synth"
	"github.com/hapticlab/envsynth/internal/thermal"
)

var ErrInvalidConfig = errors.New("envsynth: invalid config")

// Config holds the rig constants a session is built from.
type Config struct {
	EnvelopeLength int         `yaml:"envelope_length"`
	SampleRate     int         `yaml:"sample_rate"`
	WaveformRate   float64     `yaml:"waveform_rate"`
	Freq           scale.Range `yaml:"freq_range"`
	Thermal        scale.Range `yaml:"thermal_range"`
	TotalDuration  float64     `yaml:"total_duration"`
	Baseline       float64     `yaml:"baseline"`
	RelaxFactor    float64     `yaml:"relax_factor"`

	RiseCoeffs   thermal.Coeffs `yaml:"-"`
	ReturnCoeffs thermal.Coeffs `yaml:"-"`
}

func DefaultConfig() Config {
	p := synth.DefaultParams()
	return Config{
		EnvelopeLength: envelope.DefaultLength,
		SampleRate:     p.SampleRate,
		WaveformRate:   thermal.DefaultWaveformRate,
		Freq:           p.Freq,
		Thermal:        p.Thermal,
		TotalDuration:  envelope.DefaultTotalDuration,
		Baseline:       envelope.DefaultBaseline,
		RelaxFactor:    thermal.DefaultRelaxFactor,
		RiseCoeffs:     thermal.DefaultRiseCoeffs,
		ReturnCoeffs:   thermal.DefaultReturnCoeffs,
	}
}

// SynthParams returns the synthesizer settings of c.
func (c Config) SynthParams() synth.Params {
	return synth.Params{SampleRate: c.SampleRate, Freq: c.Freq, Thermal: c.Thermal}
}

func (c Config) Validate() error {
	if c.EnvelopeLength <= 0 {
		return fmt.Errorf("%w: envelope_length %d", ErrInvalidConfig, c.EnvelopeLength)
	}
	if err := c.SynthParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !(c.WaveformRate > 0) {
		return fmt.Errorf("%w: waveform_rate %v", ErrInvalidConfig, c.WaveformRate)
	}
	if !(c.TotalDuration > 0) {
		return fmt.Errorf("%w: total_duration %v", ErrInvalidConfig, c.TotalDuration)
	}
	if !(c.Baseline >= 0 && c.Baseline <= 1) {
		return fmt.Errorf("%w: baseline %v outside [0, 1]", ErrInvalidConfig, c.Baseline)
	}
	if !(c.RelaxFactor > 0) {
		return fmt.Errorf("%w: relax_factor %v", ErrInvalidConfig, c.RelaxFactor)
	}
	if err := c.RiseCoeffs.Validate(); err != nil {
		return fmt.Errorf("rise coefficients: %w", err)
	}
	if err := c.ReturnCoeffs.Validate(); err != nil {
		return fmt.Errorf("return coefficients: %w", err)
	}
	return nil
}

// fileConfig is the on-disk form. Coefficients may be given inline or as
// paths to JSON triples, relative to the config file.
type fileConfig struct {
	Config     `yaml:",inline"`
	Rise       []float64 `yaml:"rise_coeffs"`
	Return     []float64 `yaml:"return_coeffs"`
	RiseFile   string    `yaml:"rise_coeffs_file"`
	ReturnFile string    `yaml:"return_coeffs_file"`
}

// ParseConfig decodes YAML over DefaultConfig. Relative coefficient file
// paths are resolved against dir.
func ParseConfig(data []byte, dir string) (Config, error) {
	fc := fileConfig{Config: DefaultConfig()}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg := fc.Config
	var err error
	if cfg.RiseCoeffs, err = resolveCoeffs(cfg.RiseCoeffs, fc.Rise, fc.RiseFile, dir); err != nil {
		return Config{}, fmt.Errorf("rise coefficients: %w", err)
	}
	if cfg.ReturnCoeffs, err = resolveCoeffs(cfg.ReturnCoeffs, fc.Return, fc.ReturnFile, dir); err != nil {
		return Config{}, fmt.Errorf("return coefficients: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data, filepath.Dir(path))
}

func resolveCoeffs(def thermal.Coeffs, inline []float64, file, dir string) (thermal.Coeffs, error) {
	switch {
	case inline != nil && file != "":
		return thermal.Coeffs{}, fmt.Errorf("%w: both inline values and a file given", ErrInvalidConfig)
	case inline != nil:
		return thermal.FromSlice(inline)
	case file != "":
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		return thermal.LoadCoeffs(file)
	}
	return def, nil
}
