package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, []model.DocumentType{model.DocumentCRConsultation}, c.Types())

	def, err := c.Lookup("CR_Consultation")
	require.NoError(t, err)
	assert.Equal(t, "01_cr_consultation", def.Subfolder)
	assert.Equal(t, "fr", def.Language)
	assert.NotEmpty(t, def.Prompt)
	assert.NotEmpty(t, def.Phrases)
	assert.Equal(t, []string{"patient_name", "consultation_date", "reason", "diagnosis"}, def.Schema.Required())

	field, ok := def.Schema.Field("consultation_date")
	require.True(t, ok)
	assert.Equal(t, FieldDate, field.Type)

	placeholders, err := def.Placeholders()
	require.NoError(t, err)
	assert.Contains(t, placeholders, "prescriptions")
	assert.Contains(t, placeholders, "patient_name")
}

func TestLookupUnknownType(t *testing.T) {
	_, err := Default().Lookup("invoice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownDocumentType))
	assert.Contains(t, err.Error(), "cr_consultation")
}

func TestParseRejectsTemplateDrift(t *testing.T) {
	_, err := Parse([]byte(`
documents:
  - type: memo
    schema:
      fields:
        - {name: author, type: string, required: true}
    template:
      title: "Memo from {{.author}}"
      sections:
        - heading: Body
          body: "{{.body}} {{.signature}}"
`))
	require.Error(t, err)

	var terr *errors.TemplateError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "memo", terr.DocumentType)
	assert.Equal(t, []string{"body", "signature"}, terr.Placeholders)
}

func TestParseRejectsBadSchema(t *testing.T) {
	testCases := []struct {
		name     string
		yaml     string
		contains string
	}{
		{"empty", "documents: []", "empty"},
		{"unknown type", "documents:\n  - type: memo\n    schema:\n      fields:\n        - {name: a, type: blob}\n", "unknown type"},
		{"duplicate field", "documents:\n  - type: memo\n    schema:\n      fields:\n        - {name: a, type: string}\n        - {name: a, type: string}\n", "twice"},
		{"bad rule", "documents:\n  - type: memo\n    schema:\n      fields:\n        - {name: a, type: string, validate: notarule}\n", "bad rule"},
		{"duplicate type", "documents:\n  - type: memo\n  - type: memo\n", "defined twice"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
documents:
  - type: bilan
    subfolder: 02_bilan
    schema:
      fields:
        - {name: summary, type: string, required: true}
    template:
      title: Bilan
      sections:
        - {heading: Résumé, body: "{{.summary}}"}
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	def, err := c.Lookup("bilan")
	require.NoError(t, err)
	assert.Equal(t, "02_bilan", def.Subfolder)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	testCases := []struct {
		snippet string
		want    []string
	}{
		{"plain text", nil},
		{"{{.a}} and {{.b}} and {{.a}}", []string{"a", "b"}},
		{`{{join .items ", "}}`, []string{"items"}},
		{"{{if .flag}}{{.x}}{{else}}{{.y}}{{end}}", []string{"flag", "x", "y"}},
		{"{{range .rows}}{{.inner}}{{end}}", []string{"rows"}},
		{`{{default "n/a" .note | upper}}`, []string{"note"}},
	}
	for _, tc := range testCases {
		t.Run(tc.snippet, func(t *testing.T) {
			got, err := Placeholders(tc.snippet)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Placeholders("{{.unterminated")
	assert.Error(t, err)
}
