package player

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"lolplayer/src/sink"
)

// DefaultAdvanceInterval is the interval at which the sink is polled when no
// interval is specified.
const DefaultAdvanceInterval = 500 * time.Millisecond

// AutoAdvance starts a goroutine that plays the next track whenever the
// current one has finished. The sink is polled every interval.
//
// The returned channel is closed once the goroutine has exited after ctx was
// cancelled.
func AutoAdvance(ctx context.Context, ctrl *Controller, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultAdvanceInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(ctrl)
			}
		}
	}()
	return done
}

// tick advances the controller if its track has finished and reports whether
// it did.
//
// Tracks that fail to open are skipped, up to once around the playlist.
// Playback is stopped when no track can be opened at all.
func tick(ctrl *Controller) bool {
	snap := ctrl.snapshot()
	if !snap.finished {
		return false
	}
	advance(ctrl, snap)
	return true
}

// advance plays the track after the one in snap. Nothing happens if the user
// selected, paused or reloaded in the meantime.
func advance(ctrl *Controller, snap snapshot) {
	err := ctrl.playAfter(snap, 1)
	for attempt := 2; errors.Is(err, sink.ErrDecode) && attempt <= snap.length; attempt++ {
		err = ctrl.playAfter(snap, attempt)
	}

	if errors.Is(err, errSelectionChanged) {
		log.Debug("Selection changed, not advancing")
	} else if errors.Is(err, sink.ErrDecode) {
		log.Warn("None of the tracks in the playlist could be played")
		if err := ctrl.Stop(); err != nil {
			log.Errorf("Could not stop playback: %v", err)
		}
	} else if err != nil {
		log.Errorf("Could not advance to the next track: %v", err)
	}
}
