package speaker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolplayer/src/sink"
)

func writeSilentWav(t *testing.T, path string, format beep.Format, samples int) {
	t.Helper()
	fd, err := os.Create(path)
	require.NoError(t, err)
	defer fd.Close()
	require.NoError(t, wav.Encode(fd, beep.Silence(samples), format))
}

func TestOpenWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Silence.WAV")
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	writeSilentWav(t, path, format, 2205)

	s := &Sink{rate: 44100}
	st, err := s.Open(path)
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, path, st.Path())
	decoded := st.(*stream)
	assert.Equal(t, beep.SampleRate(22050), decoded.format.SampleRate)
	assert.Equal(t, 2205, decoded.streamer.Len())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := decode(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, sink.ErrDecode)
}

func TestOpenUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.m4a")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	_, err := decode(path)
	assert.ErrorIs(t, err, sink.ErrDecode)
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not a riff file"), 0o644))

	_, err := decode(path)
	assert.ErrorIs(t, err, sink.ErrDecode)
}

func TestSinkWithoutStream(t *testing.T) {
	// Nothing here touches the speaker since no stream is loaded.
	s := &Sink{rate: 44100}
	assert.True(t, s.Empty())
	assert.False(t, s.Paused())
	assert.NoError(t, s.Pause())
	assert.False(t, s.Paused())
}
