package sink

import (
	"fmt"
	"sync"
)

// DummySink is an in-memory Sink for testing. It records the streams it was
// asked to play. Streams never finish on their own, use Finish to simulate
// the end of a track.
type DummySink struct {
	// Broken lists paths that fail to open.
	Broken map[string]bool

	lock   sync.Mutex
	loaded *dummyStream
	paused bool
	ended  bool
	played []string
	stops  int
	closed bool
}

var _ Sink = &DummySink{} // Enforce interface implementation.

type dummyStream struct {
	path   string
	closed bool
}

func (s *dummyStream) Path() string { return s.path }

func (s *dummyStream) Close() error {
	s.closed = true
	return nil
}

// NewDummySink returns a sink on which the specified paths fail to open.
func NewDummySink(broken ...string) *DummySink {
	ds := &DummySink{Broken: map[string]bool{}}
	for _, path := range broken {
		ds.Broken[path] = true
	}
	return ds
}

// Open implements the sink.Sink interface.
func (ds *DummySink) Open(path string) (Stream, error) {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	if ds.Broken[path] {
		return nil, fmt.Errorf("%w: %q is broken", ErrDecode, path)
	}
	return &dummyStream{path: path}, nil
}

// Play implements the sink.Sink interface.
func (ds *DummySink) Play(stream Stream) error {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	if ds.closed {
		return fmt.Errorf("%w: sink is closed", ErrUnavailable)
	}
	ds.unload()
	st, ok := stream.(*dummyStream)
	if !ok {
		return fmt.Errorf("unsupported stream type %T", stream)
	}
	ds.loaded = st
	ds.paused = false
	ds.ended = false
	ds.played = append(ds.played, st.path)
	return nil
}

// Stop implements the sink.Sink interface.
func (ds *DummySink) Stop() error {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	ds.stops++
	ds.unload()
	return nil
}

func (ds *DummySink) unload() {
	if ds.loaded != nil {
		ds.loaded.Close()
		ds.loaded = nil
	}
	ds.paused = false
}

// Pause implements the sink.Sink interface.
func (ds *DummySink) Pause() error {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	ds.paused = true
	return nil
}

// Resume implements the sink.Sink interface.
func (ds *DummySink) Resume() error {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	ds.paused = false
	return nil
}

// Paused implements the sink.Sink interface.
func (ds *DummySink) Paused() bool {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	return ds.paused
}

// Empty implements the sink.Sink interface.
func (ds *DummySink) Empty() bool {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	return ds.loaded == nil || ds.ended
}

// Close implements the sink.Sink interface.
func (ds *DummySink) Close() error {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	ds.unload()
	ds.closed = true
	return nil
}

// Finish simulates the loaded stream reaching its end.
func (ds *DummySink) Finish() {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	ds.ended = true
}

// Loaded returns the path of the loaded stream or "" if nothing is loaded.
func (ds *DummySink) Loaded() string {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	if ds.loaded == nil {
		return ""
	}
	return ds.loaded.path
}

// Played returns the paths of all streams that were played, in order.
func (ds *DummySink) Played() []string {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	return append([]string(nil), ds.played...)
}

// Stops returns how many times Stop was called.
func (ds *DummySink) Stops() int {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	return ds.stops
}
