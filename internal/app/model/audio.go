package model

import (
	"path/filepath"
	"strings"
)

// AudioReference identifies a source recording. Path is empty until the
// locator has resolved it on disk.
type AudioReference struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder,omitempty"`
	Path      string `json:"path,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
}

// Resolved reports whether the reference points at a file on disk.
func (a AudioReference) Resolved() bool {
	return a.Path != ""
}

// Format returns the lower-case extension without the dot, e.g. "mp3".
func (a AudioReference) Format() string {
	name := a.Path
	if name == "" {
		name = a.Name
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// ConversionRecord describes one audio file rewritten into the canonical format.
type ConversionRecord struct {
	OriginalPath    string `json:"original_path"`
	ConvertedPath   string `json:"converted_path"`
	OriginalFormat  string `json:"original_format"`
	ConvertedFormat string `json:"converted_format"`
}

func (r ConversionRecord) String() string {
	return r.OriginalPath + " -> " + r.ConvertedPath
}
