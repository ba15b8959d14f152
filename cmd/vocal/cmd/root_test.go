package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/cmd/vocal/cmd/consultation"
	"vocal-assistant/cmd/vocal/cmd/history"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/testutil"
)

// sandbox runs the CLI against a temporary data root and extraction server.
func sandbox(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	root := t.TempDir()
	for key, value := range map[string]string{
		"VOCAL_DATA_ROOT":      root,
		"EXTRACTION_BASE_URL":  server.URL,
		"VOCAL_HISTORY_DRIVER": "none",
		"OPENAI_API_KEY":       "",
		"GOOGLE_API_KEY":       "",
		"GEMINI_API_KEY":       "",
		"N8N_BASE_URL":         "",
		"LOG_LEVEL":            "",
	} {
		t.Setenv(key, value)
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	testutil.WriteFile(t, filepath.Join(root, "text", "cr_consultation", "session42.txt"),
		[]byte("Patiente Jeanne Martin vue pour une toux persistante."))
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConsultationServiceDownExitsNonZero(t *testing.T) {
	sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"Workflow could not be started!"}`)
	})

	out, err := execute(t, "cr_consultation", "session42.txt")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
	assert.Contains(t, out, "text_extraction session42.txt: Failed")
	assert.Contains(t, out, "status 500")
}

func TestConsultationSuccess(t *testing.T) {
	root := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/cr_consultation", r.URL.Path)
		_, _ = io.WriteString(w, testutil.ConsultationJSON)
	})

	out, err := execute(t, "cr_consultation", "session42.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.Contains(t, out, "Succeeded")
	assert.FileExists(t, filepath.Join(root, "records", "cr_consultation", "session42.json"))
	assert.FileExists(t, filepath.Join(root, "reports", "cr_consultation", "session42.pdf"))
}

func TestDocumentsCommand(t *testing.T) {
	sandbox(t, func(http.ResponseWriter, *http.Request) {})

	out, err := execute(t, "documents")
	require.NoError(t, err)
	assert.Contains(t, out, "cr_consultation")
	assert.Contains(t, out, "patient_name")
}

func TestUnknownDocumentTypeExitsNonZero(t *testing.T) {
	sandbox(t, func(http.ResponseWriter, *http.Request) {})

	_, err := execute(t, "text_extraction", "lettre", "session42.txt")
	assert.Equal(t, 1, ExitCode(err))
	assert.True(t, errors.Is(err, errors.ErrUnknownDocumentType))
}

func TestHistoryListAndExport(t *testing.T) {
	root := sandbox(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, testutil.ConsultationJSON)
	})
	t.Setenv("VOCAL_HISTORY_DRIVER", "sqlite3")
	t.Cleanup(func() {
		_ = history.Cmd.Flags().Set("export", "")
		_ = consultation.Cmd.Flags().Set("skip-render", "false")
	})

	_, err := execute(t, "cr_consultation", "session42.txt", "--skip-render")
	require.NoError(t, err)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "text_extraction")
	assert.Contains(t, out, "Succeeded")

	xlsxPath := filepath.Join(root, "runs.xlsx")
	out, err = execute(t, "history", "--export", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 runs")
	assert.FileExists(t, xlsxPath)
}
