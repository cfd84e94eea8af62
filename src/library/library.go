package library

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	log "github.com/sirupsen/logrus"
)

// DefaultExtensions lists the file extensions that are recognized as audio
// when a Scanner has none configured.
var DefaultExtensions = []string{"mp3", "wav", "flac", "ogg"}

// A Scanner collects audio files from a directory tree.
//
// The zero value scans for DefaultExtensions without reading tags.
type Scanner struct {
	// Extensions is the allow-list of file extensions, compared case
	// insensitively and with or without a leading dot.
	Extensions []string

	// ReadTags enables reading artist, title and album from the files.
	ReadTags bool
}

// Scan traverses directory recursively, following symbolic links, and
// returns the recognized audio files sorted by file name.
//
// Entries that can not be read are skipped, the scan itself never fails. The
// only error returned is the error of ctx, in which case no tracks are
// returned.
func (sc *Scanner) Scan(ctx context.Context, directory string) ([]Track, error) {
	allowed := sc.allowList()
	visited := map[string]bool{}
	var paths []string
	sc.walk(ctx, directory, allowed, visited, &paths)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})

	tracks := make([]Track, len(paths))
	for i, path := range paths {
		tracks[i] = Track{Index: i, Path: path}
		if sc.ReadTags {
			readTags(&tracks[i])
		}
		InterpolateMissingFields(&tracks[i])
	}
	log.WithField("directory", directory).Debugf("Scanned %d tracks", len(tracks))
	return tracks, nil
}

// accepts reports whether the file at path has an extension in allowed.
func accepts(allowed map[string]bool, path string) bool {
	return allowed[extension(path)]
}

func (sc *Scanner) allowList() map[string]bool {
	exts := sc.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return allowed
}

func (sc *Scanner) walk(ctx context.Context, dir string, allowed, visited map[string]bool, paths *[]string) {
	// Symlinks may point back up the tree, so each real directory is only
	// entered once.
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		log.WithField("path", dir).Debugf("Skipping directory: %v", err)
		return
	}
	if visited[real] {
		return
	}
	visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithField("path", dir).Debugf("Skipping directory: %v", err)
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			log.WithField("path", path).Debugf("Skipping entry: %v", err)
			continue
		}
		if info.IsDir() {
			sc.walk(ctx, path, allowed, visited, paths)
		} else if info.Mode().IsRegular() && accepts(allowed, path) {
			*paths = append(*paths, path)
		}
	}
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func readTags(track *Track) {
	fd, err := os.Open(track.Path)
	if err != nil {
		return
	}
	defer fd.Close()

	meta, err := tag.ReadFrom(fd)
	if err != nil {
		log.WithField("path", track.Path).Debugf("No tags: %v", err)
		return
	}
	track.Artist = strings.TrimSpace(meta.Artist())
	track.Title = strings.TrimSpace(meta.Title())
	track.Album = strings.TrimSpace(meta.Album())
}
