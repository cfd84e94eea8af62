// Package speaker implements a sink that plays through the local sound card.
package speaker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	log "github.com/sirupsen/logrus"

	"lolplayer/src/sink"
)

// resampleQuality is passed to beep.Resample for tracks that do not match
// the device sample rate.
const resampleQuality = 4

// Sink plays streams through the speaker of the host. There can only be one
// Sink per process.
type Sink struct {
	rate beep.SampleRate
	gain float64

	lock     sync.Mutex
	current  *stream
	ctrl     *beep.Ctrl
	finished *atomic.Bool
}

var _ sink.Sink = &Sink{} // Enforce interface implementation.

// New initializes the speaker at the sample rate. The buffer size determines
// the latency of pause and stop. Gain is applied to every track as
// 2^gain, so 0 leaves the volume unchanged.
func New(sampleRate int, buffer time.Duration, gain float64) (*Sink, error) {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("%w: %v", sink.ErrUnavailable, err)
	}
	log.Debugf("Speaker initialized at %v Hz", sampleRate)
	return &Sink{rate: rate, gain: gain}, nil
}

// Open implements the sink.Sink interface.
func (s *Sink) Open(path string) (sink.Stream, error) {
	return decode(path)
}

// Play implements the sink.Sink interface.
func (s *Sink) Play(st sink.Stream) error {
	next, ok := st.(*stream)
	if !ok {
		return fmt.Errorf("unsupported stream type %T", st)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.unload()

	var streamer beep.Streamer = next.streamer
	if next.format.SampleRate != s.rate {
		streamer = beep.Resample(resampleQuality, next.format.SampleRate, s.rate, streamer)
	}
	volume := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   s.gain,
	}
	ctrl := &beep.Ctrl{Streamer: volume}

	// The callback runs on the speaker goroutine while it holds the speaker
	// lock.
	finished := &atomic.Bool{}
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		finished.Store(true)
	})))

	s.current, s.ctrl, s.finished = next, ctrl, finished
	return nil
}

// Stop implements the sink.Sink interface.
func (s *Sink) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.unload()
	return nil
}

func (s *Sink) unload() {
	speaker.Clear()
	if s.current != nil {
		if err := s.current.Close(); err != nil {
			log.WithField("path", s.current.path).Warnf("Could not close stream: %v", err)
		}
	}
	s.current, s.ctrl, s.finished = nil, nil, nil
}

// Pause implements the sink.Sink interface.
func (s *Sink) Pause() error {
	s.setPaused(true)
	return nil
}

// Resume implements the sink.Sink interface.
func (s *Sink) Resume() error {
	s.setPaused(false)
	return nil
}

func (s *Sink) setPaused(paused bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// Paused implements the sink.Sink interface.
func (s *Sink) Paused() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ctrl == nil {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return s.ctrl.Paused
}

// Empty implements the sink.Sink interface.
func (s *Sink) Empty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current == nil || s.finished.Load()
}

// Close implements the sink.Sink interface.
func (s *Sink) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.unload()
	speaker.Close()
	return nil
}
