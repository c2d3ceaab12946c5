package thermal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrInvalidCoeffs reports a missing or unusable calibration triple.
var ErrInvalidCoeffs = errors.New("thermal: invalid coefficient triple")

// Calibration fits measured on the thermal actuator. The constant term is
// zero in both fits.
var (
	DefaultRiseCoeffs   = Coeffs{A: 0, B: 0.944676, C: -0.0563504}
	DefaultReturnCoeffs = Coeffs{A: 0, B: 0.961138, C: -0.0809152}
)

// FromSlice builds a triple from an ordered [a, b, c] slice.
func FromSlice(v []float64) (Coeffs, error) {
	if len(v) != 3 {
		return Coeffs{}, fmt.Errorf("%w: want 3 values, got %d", ErrInvalidCoeffs, len(v))
	}
	c := Coeffs{A: v[0], B: v[1], C: v[2]}
	if err := c.Validate(); err != nil {
		return Coeffs{}, err
	}
	return c, nil
}

// Slice returns the ordered [a, b, c] form.
func (c Coeffs) Slice() []float64 { return []float64{c.A, c.B, c.C} }

// Validate rejects non-finite values, the zero triple and fits whose slope
// at the baseline is undefined.
func (c Coeffs) Validate() error {
	for _, v := range [...]float64{c.A, c.B, c.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value in %v", ErrInvalidCoeffs, c.Slice())
		}
	}
	if c == (Coeffs{}) {
		return fmt.Errorf("%w: all coefficients are zero", ErrInvalidCoeffs)
	}
	if c.B == 0 {
		return fmt.Errorf("%w: linear term must be non-zero", ErrInvalidCoeffs)
	}
	return nil
}

// MarshalJSON encodes the triple as [a, b, c].
func (c Coeffs) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Slice())
}

// UnmarshalJSON decodes an [a, b, c] array.
func (c *Coeffs) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCoeffs, err)
	}
	parsed, err := FromSlice(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoeffs decodes a JSON calibration triple.
func ParseCoeffs(data []byte) (Coeffs, error) {
	var c Coeffs
	if err := json.Unmarshal(data, &c); err != nil {
		return Coeffs{}, err
	}
	return c, nil
}

// LoadCoeffs reads a JSON calibration triple from path.
func LoadCoeffs(path string) (Coeffs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Coeffs{}, fmt.Errorf("load coefficients: %w", err)
	}
	c, err := ParseCoeffs(data)
	if err != nil {
		return Coeffs{}, fmt.Errorf("load coefficients %s: %w", path, err)
	}
	return c, nil
}
