// Package player implements a playback controller that plays a directory of
// audio files through a sink.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"lolplayer/src/library"
	"lolplayer/src/sink"
	"lolplayer/src/util"
)

// Status is a consistent snapshot of the controller.
type Status struct {
	// Index of the selected track, -1 if nothing is selected.
	Index     int    `json:"index"`
	Playing   bool   `json:"playing"`
	Paused    bool   `json:"paused"`
	Length    int    `json:"length"`
	Directory string `json:"directory"`
}

// A Controller owns a playlist and drives a sink to play it.
//
// All methods are safe for concurrent use. The sink passed to the controller
// must not be used by anything else.
type Controller struct {
	util.Emitter

	scanner *library.Scanner

	// sinkLock is always acquired before lock.
	sinkLock sync.Mutex
	sink     sink.Sink

	lock      sync.Mutex
	playlist  []library.Track
	directory string
	current   int
	playing   bool
	// generation is incremented every time the playlist is replaced.
	generation uint64
	// plays counts the tracks started.
	plays uint64
}

// NewController creates a controller with an empty playlist. A nil scanner
// scans for the default extensions.
func NewController(out sink.Sink, scanner *library.Scanner) *Controller {
	if scanner == nil {
		scanner = &library.Scanner{}
	}
	return &Controller{
		sink:    out,
		scanner: scanner,
		current: -1,
	}
}

// LoadLibrary scans directory and replaces the playlist with the result.
//
// Playback is stopped and the selection is cleared. If the scan is cancelled
// through ctx, the playlist is left as is.
func (c *Controller) LoadLibrary(ctx context.Context, directory string) error {
	tracks, err := c.scanner.Scan(ctx, directory)
	if err != nil {
		return err
	}

	c.sinkLock.Lock()
	if err := c.sink.Stop(); err != nil {
		log.Errorf("Could not stop playback: %v", err)
	}
	c.lock.Lock()
	c.playlist = tracks
	c.directory = directory
	c.current = -1
	c.playing = false
	c.generation++
	c.lock.Unlock()
	c.sinkLock.Unlock()

	log.WithField("directory", directory).Infof("Loaded %d tracks", len(tracks))
	c.Emit(PlaylistEvent{Directory: directory, Length: len(tracks)})
	c.Emit(TrackEvent{Index: -1})
	c.Emit(PlayStateEvent{Playing: false})
	return nil
}

// PlayIndex starts playing the track at index i, replacing whatever is
// playing.
//
// An index that is out of range is ignored. If the track can not be opened,
// the state is not changed and an error wrapping sink.ErrDecode is returned.
func (c *Controller) PlayIndex(i int) error {
	return c.playIndex(i, nil)
}

// errSelectionChanged is returned by playIndex when the state no longer
// matches the snapshot it was called with.
var errSelectionChanged = errors.New("selection changed")

// matches reports whether the selection is still the one in the snapshot.
// The caller must hold c.lock.
func (c *Controller) matches(snap *snapshot) bool {
	return snap == nil || c.current == snap.current && c.generation == snap.generation &&
		c.plays == snap.plays && c.playing
}

// playIndex plays the track at index i. If expect is set, the track is only
// played while the selection is the same as when expect was taken.
func (c *Controller) playIndex(i int, expect *snapshot) error {
	c.lock.Lock()
	if !c.matches(expect) {
		c.lock.Unlock()
		return errSelectionChanged
	}
	if i < 0 || i >= len(c.playlist) {
		c.lock.Unlock()
		return nil
	}
	track := c.playlist[i]
	generation := c.generation
	c.lock.Unlock()

	stream, err := c.sink.Open(track.Path)
	if err != nil {
		if !errors.Is(err, sink.ErrDecode) {
			err = fmt.Errorf("%w: %v", sink.ErrDecode, err)
		}
		log.WithField("path", track.Path).Warnf("Could not open track: %v", err)
		c.Emit(ErrorEvent{Index: i, Path: track.Path, Error: err.Error()})
		return fmt.Errorf("track %d: %w", i, err)
	}

	c.sinkLock.Lock()
	c.lock.Lock()
	stale := c.generation != generation
	changed := !c.matches(expect)
	c.lock.Unlock()
	if stale || changed {
		c.sinkLock.Unlock()
		stream.Close()
		if changed {
			return errSelectionChanged
		}
		log.WithField("path", track.Path).Debug("Playlist was replaced while opening track")
		return nil
	}

	if err := c.sink.Play(stream); err != nil {
		c.sinkLock.Unlock()
		stream.Close()
		return err
	}
	c.lock.Lock()
	c.current = i
	c.playing = true
	c.plays++
	c.lock.Unlock()
	c.sinkLock.Unlock()

	log.WithField("path", track.Path).Debug("Playing track")
	c.Emit(TrackEvent{Index: i})
	c.Emit(PlayStateEvent{Playing: true})
	return nil
}

// TogglePause pauses playback when it is running and resumes it otherwise.
//
// Nothing happens if no track is selected. A selected track that was stopped
// or has finished is started again.
func (c *Controller) TogglePause() error {
	c.sinkLock.Lock()
	c.lock.Lock()
	current, playing := c.current, c.playing
	selected := current >= 0 && current < len(c.playlist)
	c.lock.Unlock()
	if !selected {
		c.sinkLock.Unlock()
		return nil
	}

	if !playing && c.sink.Empty() {
		c.sinkLock.Unlock()
		return c.PlayIndex(current)
	}

	resume := c.sink.Paused()
	var err error
	if resume {
		err = c.sink.Resume()
	} else {
		err = c.sink.Pause()
	}
	if err == nil {
		c.lock.Lock()
		c.playing = resume
		c.lock.Unlock()
	}
	c.sinkLock.Unlock()

	if err != nil {
		return err
	}
	c.Emit(PlayStateEvent{Playing: resume})
	return nil
}

// Next plays the track after the selected one, wrapping around to the first
// track. The first track is played if nothing is selected.
func (c *Controller) Next() error {
	return c.step(1)
}

// Previous plays the track before the selected one, wrapping around to the
// last track. The first track is played if nothing is selected.
func (c *Controller) Previous() error {
	return c.step(-1)
}

func (c *Controller) step(delta int) error {
	c.lock.Lock()
	length := len(c.playlist)
	if length == 0 {
		c.lock.Unlock()
		return nil
	}
	index := 0
	if c.current >= 0 && c.current < length {
		index = ((c.current+delta)%length + length) % length
	}
	c.lock.Unlock()

	// A playlist replaced in the meantime is caught by PlayIndex.
	return c.PlayIndex(index)
}

// Stop unloads the sink. The selected track is kept so playback can be
// restarted with TogglePause.
func (c *Controller) Stop() error {
	c.sinkLock.Lock()
	err := c.sink.Stop()
	c.lock.Lock()
	c.playing = false
	c.lock.Unlock()
	c.sinkLock.Unlock()

	c.Emit(PlayStateEvent{Playing: false})
	return err
}

// CurrentTrack returns the selected track. The second return value is false
// if nothing is selected.
func (c *Controller) CurrentTrack() (library.Track, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.current < 0 || c.current >= len(c.playlist) {
		return library.Track{}, false
	}
	return c.playlist[c.current], true
}

// Playing reports whether playback is active. A paused or stopped controller
// is not playing.
func (c *Controller) Playing() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.playing
}

// Playlist returns a copy of the playlist.
func (c *Controller) Playlist() []library.Track {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]library.Track(nil), c.playlist...)
}

// Status returns a snapshot of the controller and its sink.
func (c *Controller) Status() Status {
	c.sinkLock.Lock()
	defer c.sinkLock.Unlock()
	paused := c.sink.Paused()

	c.lock.Lock()
	defer c.lock.Unlock()
	index := c.current
	if index >= len(c.playlist) {
		index = -1
	}
	return Status{
		Index:     index,
		Playing:   c.playing,
		Paused:    paused,
		Length:    len(c.playlist),
		Directory: c.directory,
	}
}

// Close stops playback and closes the sink.
func (c *Controller) Close() error {
	c.sinkLock.Lock()
	defer c.sinkLock.Unlock()
	c.lock.Lock()
	c.playing = false
	c.lock.Unlock()
	return c.sink.Close()
}

// snapshot is what the advance monitor needs to decide whether the current
// track has ended.
type snapshot struct {
	current    int
	length     int
	generation uint64
	plays      uint64
	finished   bool
}

func (c *Controller) snapshot() snapshot {
	c.sinkLock.Lock()
	defer c.sinkLock.Unlock()
	c.lock.Lock()
	snap := snapshot{
		current:    c.current,
		length:     len(c.playlist),
		generation: c.generation,
		plays:      c.plays,
	}
	playing := c.playing
	c.lock.Unlock()
	snap.finished = playing && snap.length > 0 && c.sink.Empty()
	return snap
}

// playAfter plays the track offset positions after the one in snap, unless
// the selection changed since snap was taken.
func (c *Controller) playAfter(snap snapshot, offset int) error {
	index := offset - 1
	if snap.current >= 0 {
		index = (snap.current + offset) % snap.length
	}
	return c.playIndex(index, &snap)
}
