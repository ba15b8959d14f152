package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// MP3Header is enough for content sniffing to report audio/mpeg.
var MP3Header = []byte("ID3\x03\x00\x00\x00\x00\x00\x00")

// ConsultationFields is a complete cr_consultation record as the extraction
// service returns it.
func ConsultationFields() map[string]any {
	return map[string]any{
		"patient_name":      "Jeanne Martin",
		"consultation_date": "2025-03-14",
		"practitioner":      "Dr Durand",
		"reason":            "Toux persistante depuis dix jours",
		"history":           "Asthme dans l'enfance",
		"examination":       "Sibilants diffus, apyrétique",
		"diagnosis":         "Bronchite aiguë",
		"treatment_plan":    "Repos, hydratation",
		"prescriptions":     []any{"Amoxicilline 1g matin et soir", "Paracétamol 1g si douleur"},
		"follow_up":         "Revoir dans 10 jours",
	}
}

// ConsultationJSON is ConsultationFields as a webhook body.
const ConsultationJSON = `{
	"patient_name": "Jeanne Martin",
	"consultation_date": "2025-03-14",
	"practitioner": "Dr Durand",
	"reason": "Toux persistante depuis dix jours",
	"history": "Asthme dans l'enfance",
	"examination": "Sibilants diffus, apyrétique",
	"diagnosis": "Bronchite aiguë",
	"treatment_plan": "Repos, hydratation",
	"prescriptions": ["Amoxicilline 1g matin et soir", "Paracétamol 1g si douleur"],
	"follow_up": "Revoir dans 10 jours"
}`

// WriteFile creates path with data, making parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// FakeTranscoder stands in for ffmpeg. Sources whose base name is in Fail
// are not converted.
type FakeTranscoder struct {
	mu    sync.Mutex
	Fail  map[string]bool
	Calls []string
}

func (f *FakeTranscoder) Transcode(_ context.Context, src, dst string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, src)
	fail := f.Fail[filepath.Base(src)]
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("ffmpeg: %s: Invalid data found when processing input", filepath.Base(src))
	}
	return os.WriteFile(dst, MP3Header, 0o644)
}

func (f *FakeTranscoder) Duration(context.Context, string) (float64, error) {
	return 1.5, nil
}
