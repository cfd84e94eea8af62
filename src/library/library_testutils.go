package library

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTestTree creates empty files at the specified paths relative to dir,
// creating intermediate directories as needed.
func WriteTestTree(t testing.TB, dir string, files ...string) {
	t.Helper()
	for _, file := range files {
		path := filepath.Join(dir, filepath.FromSlash(file))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
