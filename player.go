package envsynth

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	intaudio "github.com/hapticlab/envsynth/internal/audio"
)

// PreviewSampleRate is the output rate used for audible previews.
const PreviewSampleRate = 48000

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventLoopCompleted or EventPlaybackEnded
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	loopPlayback bool
	sampleTap    func([]float32)
}

func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player previews the vibration channel of a Signal on the audio device.
type Player struct {
	mu           sync.Mutex
	sampleRate   int
	audio        *intaudio.Player
	source       *previewSource
	volume       float64
	loopPlayback bool
	sampleTap    func([]float32)
	done         chan struct{}
	eventCh      chan PlaybackEvent
	eventChMu    sync.Mutex
}

// previewSource resamples a vibration channel to the output rate and
// reports when it runs out.
type previewSource struct {
	samples   []float32
	srcRate   int
	dstRate   int
	clip      *intaudio.Clip
	loop      bool
	gain      atomic.Uint32 // float32 bits
	finished  atomic.Bool
	onEvent   func(int)
	sampleTap func([]float32)
}

func newPreviewSource(samples []float32, srcRate, dstRate int, loop bool) *previewSource {
	s := &previewSource{samples: samples, srcRate: srcRate, dstRate: dstRate, loop: loop}
	s.clip = intaudio.NewClip(samples, srcRate, dstRate)
	s.setGain(1)
	return s
}

func (s *previewSource) setGain(g float64) {
	s.gain.Store(math.Float32bits(float32(g)))
}

func (s *previewSource) Process(dst []float32) {
	s.clip.Process(dst)
	if g := math.Float32frombits(s.gain.Load()); g != 1 {
		for i := range dst {
			dst[i] *= g
		}
	}
	if s.clip.Finished() {
		switch {
		case s.loop && s.clip.Len() > 0:
			s.clip = intaudio.NewClip(s.samples, s.srcRate, s.dstRate)
			s.emit(EventLoopCompleted)
		case !s.finished.Swap(true):
			s.emit(EventPlaybackEnded)
		}
	}
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func (s *previewSource) emit(kind int) {
	if s.onEvent != nil {
		s.onEvent(kind)
	}
}

func (s *previewSource) Finished() bool {
	return s.finished.Load()
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	var cfg playerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		sampleRate:   sampleRate,
		volume:       1,
		loopPlayback: cfg.loopPlayback,
		sampleTap:    cfg.sampleTap,
	}, nil
}

// PlayPayload previews the vibration signal carried by a payload.
func (p *Player) PlayPayload(pl Payload) error {
	if err := pl.Validate(); err != nil {
		return err
	}
	return p.Play(pl.Signal())
}

// Play starts previewing sig, replacing whatever was playing.
func (p *Player) Play(sig Signal) error {
	if sig.SampleRate <= 0 {
		return errors.New("signal has no sample rate")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})

	src := newPreviewSource(sig.Vibration, sig.SampleRate, p.sampleRate, p.loopPlayback)
	src.setGain(p.volume)
	src.sampleTap = p.sampleTap
	src.onEvent = func(kind int) {
		p.sendEvent(PlaybackEvent{Kind: kind})
		if kind == EventPlaybackEnded {
			p.signalDone()
		}
	}

	backend, err := intaudio.NewPlayer(p.sampleRate, src)
	if err != nil {
		return err
	}
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.audio = backend
	p.source = src
	p.audio.Play()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	p.source = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current preview ends. With loop playback enabled it
// blocks until Stop. Wait returns immediately if nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events. The channel is
// buffered (cap 8) and events are dropped when it is full. Only the most
// recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.source != nil {
		p.source.setGain(volume)
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// PlaybackPosition returns the current output position of the audio driver
// in output frames, i.e. what the listener hears right now. Returns 0 if not
// playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	pos := a.Position()
	return int64(pos.Seconds() * float64(p.sampleRate))
}
