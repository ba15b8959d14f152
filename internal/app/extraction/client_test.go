package extraction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/config"
)

const consultation = `{
	"patient_name": "Jeanne Martin",
	"consultation_date": "2025-03-14",
	"practitioner": "Dr Durand",
	"reason": "Toux persistante",
	"diagnosis": "Bronchite aiguë",
	"prescriptions": ["Amoxicilline 1g", "Paracétamol 1g"]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings := config.ExtractionSettings{
		BaseURL:   server.URL,
		Endpoints: map[string]string{},
		Timeout:   5 * time.Second,
		AuthToken: "secret",
	}
	return NewClient(settings, document.Default(), server.Client(), nil), server
}

func request(text string) Request {
	return Request{DocumentType: model.DocumentCRConsultation, Text: text, Source: "session42.txt"}
}

func TestExtractSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webhook/cr_consultation", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, "cr_consultation", body["document_type"])
		assert.Equal(t, "Patiente vue pour une toux.", body["text"])
		assert.Equal(t, "session42.txt", body["source"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, consultation)
	})

	rec, err := client.Extract(context.Background(), request("Patiente vue pour une toux."))
	require.NoError(t, err)

	assert.Equal(t, model.DocumentCRConsultation, rec.DocumentType)
	assert.Equal(t, "session42.txt", rec.Source)
	assert.Equal(t, "Jeanne Martin", rec.Fields["patient_name"])
	assert.Equal(t, []any{"Amoxicilline 1g", "Paracétamol 1g"}, rec.Fields["prescriptions"])
	// optional fields absent from the answer are still present
	assert.Equal(t, "", rec.Fields["follow_up"])
	assert.True(t, rec.Has("treatment_plan"))
	assert.NotEmpty(t, rec.Raw)
}

func TestExtractUnwrapsEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", "[" + consultation + "]"},
		{"data", `{"data": ` + consultation + `}`},
		{"string", mustQuote(consultation)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			rec, err := client.Extract(context.Background(), request("texte"))
			require.NoError(t, err)
			assert.Equal(t, "Bronchite aiguë", rec.Fields["diagnosis"])
		})
	}
}

func TestExtractServiceUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"message":"Workflow could not be started"}`},
		{"not found", http.StatusNotFound, `{"message":"webhook not registered"}`},
		{"malformed", http.StatusOK, `<html>oops</html>`},
		{"two items", http.StatusOK, "[" + consultation + "," + consultation + "]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			rec, err := client.Extract(context.Background(), request("texte"))
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.True(t, errors.Is(err, errors.ErrServiceUnavailable), err.Error())

			var xerr *errors.ExtractionError
			require.True(t, errors.As(err, &xerr))
			assert.Equal(t, tt.status, xerr.StatusCode)
		})
	}
}

func TestExtractUnreachable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Extract(context.Background(), request("texte"))
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestExtractSchemaMismatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"consultation_date": "14 mars",
			"reason": "Toux",
			"diagnosis": 42,
			"prescriptions": "Amoxicilline"
		}`)
	})

	rec, err := client.Extract(context.Background(), request("texte"))
	require.Error(t, err)
	assert.Nil(t, rec, "no partial record")
	assert.True(t, errors.Is(err, errors.ErrSchemaMismatch))

	var xerr *errors.ExtractionError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, []string{"patient_name", "consultation_date", "diagnosis"}, xerr.Fields)
}

func TestExtractRejectsUnknownTypeAndEmptyText(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.Extract(context.Background(), Request{DocumentType: "lettre", Text: "x"})
	assert.True(t, errors.Is(err, errors.ErrUnknownDocumentType))

	_, err = client.Extract(context.Background(), request("   "))
	assert.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestExtractExplicitEndpointAndHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/custom", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("X-N8N-Key"))
		_, _ = io.WriteString(w, consultation)
	}))
	defer server.Close()

	client := NewClient(config.ExtractionSettings{
		Endpoints:  map[string]string{"cr_consultation": server.URL + "/custom"},
		Timeout:    time.Second,
		AuthHeader: "X-N8N-Key",
		AuthToken:  "tok",
	}, document.Default(), nil, nil)

	_, err := client.Extract(context.Background(), request("texte"))
	assert.NoError(t, err)
}

func TestValidateNormalizesDates(t *testing.T) {
	def, err := document.Default().Lookup("cr_consultation")
	require.NoError(t, err)

	for _, in := range []string{"2025-03-14", "14/03/2025", "2025-03-14T09:30:00Z"} {
		fields, err := Validate(def, map[string]any{
			"patient_name":      "A",
			"consultation_date": in,
			"reason":            "B",
			"diagnosis":         "C",
		})
		require.NoError(t, err, in)
		assert.Equal(t, "2025-03-14", fields["consultation_date"], in)
	}
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
