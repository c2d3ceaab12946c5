package audio

import (
	"math"
	"sync/atomic"
)

// Clip plays a mono buffer recorded at one rate on a stereo output running at
// another, using linear interpolation between source samples.
type Clip struct {
	samples []float32
	step    float64 // source samples per output frame
	pos     float64

	played   atomic.Uint64 // float64 bits of the fraction played
	finished atomic.Bool
}

func NewClip(samples []float32, srcRate, dstRate int) *Clip {
	c := &Clip{samples: samples, step: 1}
	if srcRate > 0 && dstRate > 0 {
		c.step = float64(srcRate) / float64(dstRate)
	}
	if len(samples) == 0 {
		c.finished.Store(true)
	}
	return c
}

func (c *Clip) Process(dst []float32) {
	n := len(c.samples)
	for i := 0; i+1 < len(dst); i += 2 {
		var v float32
		if idx := int(c.pos); idx < n {
			frac := float32(c.pos - float64(idx))
			v = c.samples[idx]
			if idx+1 < n {
				v += (c.samples[idx+1] - v) * frac
			}
			c.pos += c.step
		}
		dst[i] = v
		dst[i+1] = v
	}
	if n == 0 {
		return
	}
	done := math.Min(c.pos/float64(n), 1)
	c.played.Store(math.Float64bits(done))
	if c.pos >= float64(n) {
		c.finished.Store(true)
	}
}

// Finished reports whether every source sample has been emitted.
func (c *Clip) Finished() bool { return c.finished.Load() }

// Progress returns the fraction of the clip handed to the output so far.
func (c *Clip) Progress() float64 {
	if len(c.samples) == 0 {
		return 1
	}
	return math.Float64frombits(c.played.Load())
}

// Len returns the number of source samples.
func (c *Clip) Len() int { return len(c.samples) }
