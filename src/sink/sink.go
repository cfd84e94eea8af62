package sink

import (
	"errors"
	"io"
)

var (
	// ErrUnavailable is returned when the output device can not be opened.
	// No playback is possible without it.
	ErrUnavailable = errors.New("audio output unavailable")

	// ErrDecode is returned when a track can not be opened or decoded.
	ErrDecode = errors.New("unable to decode track")
)

// A Stream is a track that has been opened and is ready to be played.
//
// Closing a stream that was handed to Sink.Play is the responsibility of the
// sink.
type Stream interface {
	io.Closer

	// Path returns the file the stream was opened from.
	Path() string
}

// A Sink is a connection to an audio output that holds at most one stream at
// a time. Sequencing multiple tracks is up to the caller.
//
// Implementations must be safe for concurrent use, though callers are
// expected to serialize state changing calls.
type Sink interface {
	// Open prepares the file at path for playback. Decoding may be slow and
	// does not affect what is currently playing.
	//
	// Errors returned should wrap ErrDecode.
	Open(path string) (Stream, error)

	// Play replaces any loaded content with the stream and starts playing it
	// immediately.
	Play(stream Stream) error

	// Stop unloads the current stream. Empty reports true afterwards.
	Stop() error

	Pause() error
	Resume() error
	Paused() bool

	// Empty reports whether nothing is loaded or the loaded stream has
	// finished.
	Empty() bool

	// Close stops playback and releases the device.
	Close() error
}
