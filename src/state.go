package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"lolplayer/src/player"
	"lolplayer/src/util"
)

// state is what is remembered between runs.
type state struct {
	Library string `json:"library"`
}

// trackState stores the directory of every library that is loaded into the
// controller. The returned channel is closed once ctx is done.
func trackState(ctx context.Context, ctrl *player.Controller, store *util.PersistentStorage[state]) <-chan struct{} {
	done := make(chan struct{})
	listener := ctrl.Events().Listen(ctx)
	go func() {
		defer close(done)
		for event := range listener {
			ev, ok := event.(player.PlaylistEvent)
			if !ok {
				continue
			}
			if err := store.SetValue(state{Library: ev.Directory}); err != nil {
				log.Errorf("Could not save state: %v", err)
			}
		}
	}()
	return done
}
