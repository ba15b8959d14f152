package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/config"
)

func newWorkspace(t *testing.T) (*Workspace, config.PathSettings) {
	root := t.TempDir()
	paths := config.PathSettings{
		DataRoot:   root,
		TextDir:    filepath.Join(root, "text"),
		RecordsDir: filepath.Join(root, "records"),
	}
	return New(paths), paths
}

func TestTranscriptRoundTrip(t *testing.T) {
	w, paths := newWorkspace(t)

	path, err := w.WriteTranscript(model.DocumentCRConsultation, "/audio/01_cr_consultation/session42.mp3", "  Patiente vue pour une toux.  ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.TextDir, "cr_consultation", "session42.txt"), path)

	for _, name := range []string{"session42", "session42.txt", path} {
		got, text, err := w.ReadTranscript(model.DocumentCRConsultation, name)
		require.NoError(t, err, name)
		assert.Equal(t, path, got)
		assert.Equal(t, "Patiente vue pour une toux.", text)
	}
}

func TestWriteTranscriptNeedsSource(t *testing.T) {
	w, paths := newWorkspace(t)

	_, err := w.WriteTranscript(model.DocumentCRConsultation, "", "texte")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(paths.TextDir, "cr_consultation", ".txt"))
}

func TestReadTranscriptErrors(t *testing.T) {
	w, paths := newWorkspace(t)

	_, _, err := w.ReadTranscript(model.DocumentCRConsultation, "absent")
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))

	_, _, err = w.ReadTranscript(model.DocumentCRConsultation, "")
	assert.Error(t, err)

	empty := filepath.Join(paths.TextDir, "blank.txt")
	require.NoError(t, os.MkdirAll(paths.TextDir, 0o755))
	require.NoError(t, os.WriteFile(empty, []byte("\n  \n"), 0o644))
	_, _, err = w.ReadTranscript(model.DocumentCRConsultation, "blank")
	assert.ErrorContains(t, err, "is empty")
}

func TestRecordRoundTrip(t *testing.T) {
	w, paths := newWorkspace(t)

	rec := &model.StructuredRecord{
		DocumentType: model.DocumentCRConsultation,
		Source:       "session42.txt",
		Fields:       map[string]any{"patient_name": "Jeanne Martin", "prescriptions": []any{"Amoxicilline"}},
	}
	path, err := w.WriteRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.RecordsDir, "cr_consultation", "session42.json"), path)

	got, loaded, err := w.ReadRecord(model.DocumentCRConsultation, "session42")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, rec.Fields, loaded.Fields)
	assert.Equal(t, "session42.txt", loaded.Source)
}

func TestReadRecordRejectsOtherType(t *testing.T) {
	w, paths := newWorkspace(t)

	dir := filepath.Join(paths.RecordsDir, "cr_consultation")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"), []byte(`{"document_type":"lettre","fields":{}}`), 0o644))

	_, _, err := w.ReadRecord(model.DocumentCRConsultation, "x")
	assert.ErrorContains(t, err, "document type is lettre")
}
