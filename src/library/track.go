package library

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	interpArtistTitleInTitle    = regexp.MustCompile(`(.+)\s+-\s+(.+)`)
	interpArtistTitleInFilename = regexp.MustCompile(`^(?:(?:\d+\.\s+)|(?:\d+\s+-\s+))?(.+?)\s+-\s+(.+)$`)
)

// Track is a single playable audio file at a position in a playlist.
type Track struct {
	// Index is the position of the track in the playlist it was loaded
	// into.
	Index int    `json:"index"`
	Path  string `json:"path"`

	Artist string `json:"artist,omitempty"`
	Title  string `json:"title,omitempty"`
	Album  string `json:"album,omitempty"`
}

// Name returns the base name of the track's file.
func (track Track) Name() string {
	return filepath.Base(track.Path)
}

func (track Track) String() string {
	if track.Artist == "" {
		return fmt.Sprintf("%d. %s", track.Index+1, track.Title)
	}
	return fmt.Sprintf("%d. %s - %s", track.Index+1, track.Artist, track.Title)
}

// InterpolateMissingFields extracts the artist and title from other track
// information if they are unavailable and applies them to the specified track.
func InterpolateMissingFields(track *Track) {
	if track.Artist != "" && track.Title != "" {
		return
	}

	// Attempt to find an "<artist> - <title>" string in the track title.
	if track.Artist == "" && track.Title != "" {
		if match := interpArtistTitleInTitle.FindStringSubmatch(track.Title); match != nil {
			track.Artist, track.Title = match[1], match[2]
			return
		}
	}

	base := strings.TrimSuffix(track.Name(), filepath.Ext(track.Path))

	// Look for the "<artist> - <title>" pattern in the filename.
	if track.Artist == "" && track.Title == "" {
		if match := interpArtistTitleInFilename.FindStringSubmatch(base); match != nil {
			track.Artist, track.Title = match[1], match[2]
			return
		}
	}

	// Still nothing? Just use the filename.
	if track.Title == "" {
		track.Title = base
	}
}
