package util

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// PersistentStorage keeps a single value in memory and mirrors every change
// to a JSON file.
type PersistentStorage[T any] struct {
	value    T
	file     string
	fileLock sync.Mutex
}

// NewPersistentStorage opens the storage at filename. If the file does not
// exist yet, it is created holding initial.
func NewPersistentStorage[T any](filename string, initial T) (*PersistentStorage[T], error) {
	store := &PersistentStorage[T]{
		file:  filename,
		value: initial,
	}

	ok, err := store.readValue()
	if err != nil {
		return nil, err
	}

	if !ok {
		if err := store.SetValue(initial); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func (store *PersistentStorage[T]) Value() T {
	store.fileLock.Lock()
	defer store.fileLock.Unlock()
	return store.value
}

func (store *PersistentStorage[T]) SetValue(value T) error {
	store.fileLock.Lock()
	defer store.fileLock.Unlock()

	store.value = value
	if err := os.MkdirAll(filepath.Dir(store.file), 0o755); err != nil {
		return err
	}
	file, err := os.Create(store.file)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(store.value)
}

func (store *PersistentStorage[T]) readValue() (bool, error) {
	store.fileLock.Lock()
	defer store.fileLock.Unlock()

	file, err := os.Open(store.file)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer file.Close()

	var value T
	if err := json.NewDecoder(file).Decode(&value); err != nil {
		return false, err
	}
	store.value = value
	return true, nil
}
