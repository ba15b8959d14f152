package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StructuredRecord holds the fields extracted for a document type. Every
// required schema field is present once a record has been accepted.
type StructuredRecord struct {
	DocumentType DocumentType    `json:"document_type"`
	Source       string          `json:"source"`
	Fields       map[string]any  `json:"fields"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// Has reports whether the record carries a value for key.
func (r *StructuredRecord) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Fields[key]
	return ok
}

// String returns the field value formatted for display.
func (r *StructuredRecord) String(key string) string {
	if r == nil {
		return ""
	}
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Keys returns the field names in sorted order.
func (r *StructuredRecord) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReportArtifact is a rendered PDF together with the record it came from.
type ReportArtifact struct {
	Path         string            `json:"path"`
	Size         int64             `json:"size"`
	SHA256       string            `json:"sha256"`
	DocumentType DocumentType      `json:"document_type"`
	Record       *StructuredRecord `json:"record"`
}
