package player

// PlaylistEvent is emitted after a library was loaded and the playlist was
// replaced.
type PlaylistEvent struct {
	Directory string `json:"directory"`
	Length    int    `json:"length"`
}

// TrackEvent is emitted when the selected track changes. An index of -1
// means that nothing is selected.
type TrackEvent struct {
	Index int `json:"index"`
}

// PlayStateEvent is emitted when playback is started or halted.
type PlayStateEvent struct {
	Playing bool `json:"playing"`
}

// ErrorEvent is emitted when a track could not be opened. The selection is
// not changed.
type ErrorEvent struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	Error string `json:"error"`
}
