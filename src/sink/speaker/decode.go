package speaker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"lolplayer/src/sink"
)

type decoder func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decoder{
	".mp3": mp3.Decode,
	".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(rc)
	},
	".flac": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(rc)
	},
	".ogg": vorbis.Decode,
	".oga": vorbis.Decode,
}

// stream is a decoded audio file.
type stream struct {
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
}

func (s *stream) Path() string {
	return s.path
}

// Close closes the decoder along with the underlying file.
func (s *stream) Close() error {
	return s.streamer.Close()
}

func decode(path string) (*stream, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format: %q", sink.ErrDecode, path)
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sink.ErrDecode, err)
	}
	streamer, format, err := dec(fd)
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("%w: %q: %v", sink.ErrDecode, path, err)
	}
	return &stream{path: path, streamer: streamer, format: format}, nil
}
