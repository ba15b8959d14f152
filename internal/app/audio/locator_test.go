package audio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

func TestResolveConvertsSourceFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "01_cr_consultation", "session42.m4a"), []byte("m4a"))

	tc := &fakeTranscoder{}
	conv := newTestConverter(t, root, tc, 1)

	ref, rec, err := conv.Resolve(context.Background(), model.AudioReference{Name: "session42.m4a", Subfolder: "01_cr_consultation"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, filepath.Join(root, "01_cr_consultation", "session42.mp3"), ref.Path)
	assert.Equal(t, "session42.mp3", ref.Name)
	assert.Equal(t, "audio/mpeg", ref.MIMEType)
	assert.Equal(t, "mp3", ref.Format())

	// second call reuses the converted sibling
	ref2, rec2, err := conv.Resolve(context.Background(), model.AudioReference{Name: "session42.m4a", Subfolder: "01_cr_consultation"})
	require.NoError(t, err)
	assert.Nil(t, rec2)
	assert.Equal(t, ref.Path, ref2.Path)
	assert.Len(t, tc.calls, 1)
}

func TestResolveLookupOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "note2.mp3"), mp3Header)
	conv := newTestConverter(t, root, &fakeTranscoder{}, 1)

	// falls back to the audio root and guesses the extension
	ref, rec, err := conv.Resolve(context.Background(), model.AudioReference{Name: "note2", Subfolder: "01_cr_consultation"})
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, filepath.Join(root, "note2.mp3"), ref.Path)

	abs := filepath.Join(root, "note2.mp3")
	ref, _, err = conv.Resolve(context.Background(), model.AudioReference{Name: abs})
	require.NoError(t, err)
	assert.Equal(t, abs, ref.Path)
}

func TestResolveErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.mp3"), []byte("just some text, not audio at all"))
	writeFile(t, filepath.Join(root, "broken.m4a"), []byte("m4a"))
	conv := newTestConverter(t, root, &fakeTranscoder{fail: map[string]bool{"broken.m4a": true}}, 1)

	_, _, err := conv.Resolve(context.Background(), model.AudioReference{Name: "absent.mp3"})
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))

	_, _, err = conv.Resolve(context.Background(), model.AudioReference{Name: "notes.mp3"})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedAudio))
	assert.Contains(t, err.Error(), "text/plain")

	_, _, err = conv.Resolve(context.Background(), model.AudioReference{Name: "broken.m4a"})
	var cerr *errors.ConversionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, filepath.Join(root, "broken.m4a"), cerr.Path)

	_, _, err = conv.Resolve(context.Background(), model.AudioReference{})
	assert.Error(t, err)
}

func TestFFmpegArgsAndProbe(t *testing.T) {
	f := NewFFmpeg("", "", "")
	assert.Equal(t, "ffmpeg", f.Bin)
	assert.Equal(t, []string{"-hide_banner", "-loglevel", "error", "-n", "-i", "in.m4a", "-vn", "-acodec", "libmp3lame", "-q:a", "2", "out.mp3"}, f.Args("in.m4a", "out.mp3"))

	seconds, err := ParseProbeDuration([]byte(`{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"44100"}],"format":{"format_name":"mp3","duration":"45.678000"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 45.678, seconds, 1e-9)

	_, err = ParseProbeDuration([]byte(`{"format":{}}`))
	assert.Error(t, err)
	_, err = ParseProbeDuration([]byte(`not json`))
	assert.Error(t, err)
}

func TestShouldShowProgress(t *testing.T) {
	assert.True(t, ShouldShowProgress(true))
	assert.False(t, IsTTY(nil))
}
