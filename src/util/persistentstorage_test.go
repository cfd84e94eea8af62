package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	Library string `json:"library"`
}

func TestPersistentStorageCreatesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "state.json")

	store, err := NewPersistentStorage(file, testState{Library: "/music"})
	require.NoError(t, err)
	assert.Equal(t, "/music", store.Value().Library)

	_, err = os.Stat(file)
	assert.NoError(t, err)
}

func TestPersistentStorageRestoresValue(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.json")

	store, err := NewPersistentStorage(file, testState{})
	require.NoError(t, err)
	require.NoError(t, store.SetValue(testState{Library: "/srv/music"}))

	reopened, err := NewPersistentStorage(file, testState{Library: "/ignored"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/music", reopened.Value().Library)
}

func TestPersistentStorageCorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o644))

	_, err := NewPersistentStorage(file, testState{})
	assert.Error(t, err)
}
