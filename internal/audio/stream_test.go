package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFrames(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestClipSameRateCopiesToBothChannels(t *testing.T) {
	c := NewClip([]float32{0.1, 0.2, 0.3}, 100, 100)
	dst := make([]float32, 8)
	c.Process(dst)
	assert.Equal(t, []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3, 0, 0}, dst)
	assert.True(t, c.Finished())
	assert.Equal(t, 1.0, c.Progress())
}

func TestClipUpsamplesLinearly(t *testing.T) {
	c := NewClip([]float32{0, 1}, 1, 4)
	dst := make([]float32, 2*8)
	c.Process(dst)
	want := []float32{0, 0.25, 0.5, 0.75, 1, 1, 1, 1}
	for i, w := range want {
		assert.InDelta(t, w, dst[2*i], 1e-6, "frame %d", i)
	}
	assert.True(t, c.Finished())
}

func TestClipProgress(t *testing.T) {
	c := NewClip(make([]float32, 10), 10, 10)
	assert.Equal(t, 0.0, c.Progress())
	c.Process(make([]float32, 8))
	assert.InDelta(t, 0.4, c.Progress(), 1e-12)
	assert.False(t, c.Finished())
	c.Process(make([]float32, 20))
	assert.True(t, c.Finished())
}

func TestEmptyClipIsFinished(t *testing.T) {
	c := NewClip(nil, 10000, 48000)
	assert.True(t, c.Finished())
	assert.Equal(t, 1.0, c.Progress())
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(NewClip([]float32{0.5, -0.5}, 1, 1))
	p := make([]byte, 16)
	n, err := r.Read(p)
	require.NoError(t, err)
	require.Equal(t, 16, n)
	assert.Equal(t, []float32{0.5, 0.5, -0.5, -0.5}, decodeFrames(p))

	_, err = r.Read(p)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamReaderIgnoresPartialFrame(t *testing.T) {
	r := NewStreamReader(NewClip([]float32{1}, 1, 1))
	n, err := r.Read(make([]byte, 7))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
