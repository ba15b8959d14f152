// Package workspace maps stage outputs to files: transcripts under the text
// directory, extracted records under the records directory, both grouped by
// document type and named after their input.
package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/util/files"
	"vocal-assistant/internal/config"
)

const (
	TranscriptExt = ".txt"
	RecordExt     = ".json"
)

type Workspace struct {
	textDir    string
	recordsDir string
}

func New(paths config.PathSettings) *Workspace {
	return &Workspace{textDir: paths.TextDir, recordsDir: paths.RecordsDir}
}

// TranscriptPath is <text_dir>/<docType>/<base>.txt.
func (w *Workspace) TranscriptPath(docType model.DocumentType, source string) string {
	return filepath.Join(w.textDir, docType.String(), files.BaseName(source)+TranscriptExt)
}

// RecordPath is <records_dir>/<docType>/<base>.json.
func (w *Workspace) RecordPath(docType model.DocumentType, source string) string {
	return filepath.Join(w.recordsDir, docType.String(), files.BaseName(source)+RecordExt)
}

// WriteTranscript stores text as the transcript of the recording at source
// and returns its path.
func (w *Workspace) WriteTranscript(docType model.DocumentType, source, text string) (string, error) {
	if files.BaseName(source) == "" {
		return "", errors.RequiredField("transcript source")
	}
	path := w.TranscriptPath(docType, source)
	if err := files.WriteFileAtomic(path, []byte(strings.TrimSpace(text)+"\n")); err != nil {
		return "", errors.Wrapf(err, "write transcript %s", path)
	}
	return path, nil
}

// ReadTranscript finds a transcript by name and returns its path and text.
func (w *Workspace) ReadTranscript(docType model.DocumentType, name string) (string, string, error) {
	path, err := w.find(name, TranscriptExt, w.textDir, docType)
	if err != nil {
		return "", "", err
	}
	text, err := files.ReadOutputFile(path)
	if err != nil {
		return "", "", errors.Wrapf(err, "read transcript %s", path)
	}
	if text == "" {
		return "", "", errors.Newf("transcript %s is empty", path)
	}
	return path, text, nil
}

// WriteRecord stores rec as indented JSON and returns its path.
func (w *Workspace) WriteRecord(rec *model.StructuredRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	path := w.RecordPath(rec.DocumentType, rec.Source)
	if err := files.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return "", errors.Wrapf(err, "write record %s", path)
	}
	return path, nil
}

// ReadRecord loads a saved record by name. A record saved for another
// document type is rejected.
func (w *Workspace) ReadRecord(docType model.DocumentType, name string) (string, *model.StructuredRecord, error) {
	path, err := w.find(name, RecordExt, w.recordsDir, docType)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "read record %s", path)
	}
	var rec model.StructuredRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", nil, errors.Wrapf(err, "decode record %s", path)
	}
	if rec.DocumentType == "" {
		rec.DocumentType = docType
	}
	if rec.DocumentType != docType {
		return "", nil, errors.InvalidField("record "+path, "document type is "+rec.DocumentType.String()+", not "+docType.String())
	}
	if rec.Source == "" {
		rec.Source = filepath.Base(path)
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	return path, &rec, nil
}

// find resolves name: as given (absolute or relative to the working
// directory), then under dir/<docType>, then under dir. ext is appended
// when name has none.
func (w *Workspace) find(name, ext, dir string, docType model.DocumentType) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.RequiredField("file name")
	}
	if filepath.Ext(name) == "" {
		name += ext
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates,
			filepath.Join(dir, docType.String(), name),
			filepath.Join(dir, name),
		)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", errors.NotFound("file", strings.Join(candidates, ", "))
}
