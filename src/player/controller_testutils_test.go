package player

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lolplayer/src/library"
	"lolplayer/src/sink"
)

// newTestController returns a controller that has loaded a directory
// containing the specified files.
func newTestController(t *testing.T, files ...string) (*Controller, *sink.DummySink, string) {
	t.Helper()
	dir := t.TempDir()
	library.WriteTestTree(t, dir, files...)
	ds := sink.NewDummySink()
	ctrl := NewController(ds, nil)
	require.NoError(t, ctrl.LoadLibrary(context.Background(), dir))
	return ctrl, ds, dir
}

func currentIndex(ctrl *Controller) int {
	track, ok := ctrl.CurrentTrack()
	if !ok {
		return -1
	}
	return track.Index
}

func join(dir string, names ...string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}
