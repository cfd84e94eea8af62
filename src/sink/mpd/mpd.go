// Package mpd implements a sink that delegates playback to a Music Player
// Daemon.
package mpd

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
	log "github.com/sirupsen/logrus"

	"lolplayer/src/sink"
)

// Sink controls the queue of an MPD server. The server must be able to read
// the tracks from its own music directory, which is root as seen from this
// process.
//
// The server's queue is cleared whenever a track is played.
type Sink struct {
	network, address string
	password         string
	root             string

	// Serializes commands so the queue is not modified by two operations at
	// once.
	lock sync.Mutex
}

var _ sink.Sink = &Sink{} // Enforce interface implementation.

type stream struct {
	path, uri string
}

func (s *stream) Path() string { return s.path }
func (s *stream) Close() error { return nil }

// Connect checks whether the server is reachable and returns a sink for it.
func Connect(network, address string, password *string, root string) (*Sink, error) {
	var passwd string
	if password != nil {
		passwd = *password
	}
	s := &Sink{
		network:  network,
		address:  address,
		password: passwd,
		root:     root,
	}
	err := s.withMpd(func(mpdc *mpd.Client) error {
		return mpdc.Ping()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sink.ErrUnavailable, err)
	}
	log.WithField("address", address).Info("Connected to MPD")
	return s, nil
}

func (s *Sink) withMpd(fn func(*mpd.Client) error) error {
	client, err := mpd.DialAuthenticated(s.network, s.address, s.password)
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

// uriFor maps a local path to a path relative to the music directory of the
// server.
func uriFor(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside of the music directory %q", path, root)
	}
	return filepath.ToSlash(rel), nil
}

// Open implements the sink.Sink interface.
func (s *Sink) Open(path string) (sink.Stream, error) {
	uri, err := uriFor(s.root, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sink.ErrDecode, err)
	}
	err = s.withMpd(func(mpdc *mpd.Client) error {
		_, err := mpdc.ListInfo(uri)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", sink.ErrDecode, uri, err)
	}
	return &stream{path: path, uri: uri}, nil
}

// Play implements the sink.Sink interface.
func (s *Sink) Play(st sink.Stream) error {
	next, ok := st.(*stream)
	if !ok {
		return fmt.Errorf("unsupported stream type %T", st)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.withMpd(func(mpdc *mpd.Client) error {
		if err := mpdc.Clear(); err != nil {
			return err
		}
		if err := mpdc.Add(next.uri); err != nil {
			return err
		}
		return mpdc.Play(0)
	})
}

// Stop implements the sink.Sink interface.
func (s *Sink) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.withMpd(func(mpdc *mpd.Client) error {
		if err := mpdc.Stop(); err != nil {
			return err
		}
		return mpdc.Clear()
	})
}

// Pause implements the sink.Sink interface.
func (s *Sink) Pause() error {
	return s.setPaused(true)
}

// Resume implements the sink.Sink interface.
func (s *Sink) Resume() error {
	return s.setPaused(false)
}

func (s *Sink) setPaused(paused bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.withMpd(func(mpdc *mpd.Client) error {
		return mpdc.Pause(paused)
	})
}

func (s *Sink) state() (string, error) {
	var state string
	err := s.withMpd(func(mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		state = status["state"]
		return nil
	})
	return state, err
}

// Paused implements the sink.Sink interface.
func (s *Sink) Paused() bool {
	state, err := s.state()
	if err != nil {
		log.Errorf("Could not query MPD status: %v", err)
		return false
	}
	return state == "pause"
}

// Empty implements the sink.Sink interface.
//
// A server that can not be reached is not considered empty so the next track
// is not started while the connection is down.
func (s *Sink) Empty() bool {
	state, err := s.state()
	if err != nil {
		log.Errorf("Could not query MPD status: %v", err)
		return false
	}
	return state == "stop"
}

// Close implements the sink.Sink interface.
func (s *Sink) Close() error {
	return s.Stop()
}
