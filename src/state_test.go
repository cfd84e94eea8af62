package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolplayer/src/library"
	"lolplayer/src/player"
	"lolplayer/src/sink"
	"lolplayer/src/util"
)

func TestTrackState(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.json")
	store, err := util.NewPersistentStorage(file, state{})
	require.NoError(t, err)

	ctrl := player.NewController(sink.NewDummySink(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := trackState(ctx, ctrl, store)

	dir := t.TempDir()
	library.WriteTestTree(t, dir, "a.mp3")
	require.NoError(t, ctrl.LoadLibrary(context.Background(), dir))

	assert.Eventually(t, func() bool {
		return store.Value().Library == dir
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	reopened, err := util.NewPersistentStorage(file, state{})
	require.NoError(t, err)
	assert.Equal(t, state{Library: dir}, reopened.Value())
}
