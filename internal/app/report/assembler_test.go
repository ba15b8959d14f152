package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
)

func consultationRecord() *model.StructuredRecord {
	return &model.StructuredRecord{
		DocumentType: model.DocumentCRConsultation,
		Source:       "session42.txt",
		Fields: map[string]any{
			"patient_name":      "Jeanne Martin",
			"consultation_date": "2025-03-14",
			"practitioner":      "Dr Durand",
			"reason":            "Toux persistante",
			"history":           "",
			"examination":       "Auscultation: sibilants",
			"diagnosis":         "Bronchite aiguë",
			"treatment_plan":    "Repos",
			"prescriptions":     []any{"Amoxicilline 1g", "Paracétamol 1g"},
			"follow_up":         nil,
		},
	}
}

func TestComposeFillsTemplate(t *testing.T) {
	def, err := document.Default().Lookup("cr_consultation")
	require.NoError(t, err)

	page, err := Compose(def, consultationRecord())
	require.NoError(t, err)

	assert.Equal(t, "Compte rendu de consultation", page.Title)
	assert.Equal(t, []string{"Patient : Jeanne Martin", "Date : 2025-03-14", "Praticien : Dr Durand"}, page.Header)

	bodies := map[string]string{}
	for _, s := range page.Sections {
		bodies[s.Heading] = s.Body
	}
	assert.Equal(t, "Bronchite aiguë", bodies["Diagnostic"])
	assert.Equal(t, "- Amoxicilline 1g\n- Paracétamol 1g", bodies["Ordonnance"])
	assert.Equal(t, "", bodies["Suivi"])
}

func TestComposeMissingFieldIsTemplateError(t *testing.T) {
	def, err := document.Default().Lookup("cr_consultation")
	require.NoError(t, err)

	rec := consultationRecord()
	delete(rec.Fields, "diagnosis")
	delete(rec.Fields, "treatment_plan")

	page, err := Compose(def, rec)
	assert.Nil(t, page)

	var terr *errors.TemplateError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, []string{"diagnosis", "treatment_plan"}, terr.Placeholders)
}

func TestRenderWritesPDF(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, document.Default(), nil)

	artifact, err := a.Render(context.Background(), model.DocumentCRConsultation, consultationRecord(), "")
	require.NoError(t, err)

	want := filepath.Join(dir, "cr_consultation", "session42.pdf")
	assert.Equal(t, want, artifact.Path)
	assert.Positive(t, artifact.Size)
	assert.Len(t, artifact.SHA256, 64)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	// same input, same path; the file is replaced
	again, err := a.Render(context.Background(), model.DocumentCRConsultation, consultationRecord(), "/elsewhere/session42.txt")
	require.NoError(t, err)
	assert.Equal(t, want, again.Path)
}

func TestRenderMissingFieldWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(dir, document.Default(), nil)

	rec := consultationRecord()
	delete(rec.Fields, "patient_name")

	_, err := a.Render(context.Background(), model.DocumentCRConsultation, rec, "")
	var terr *errors.TemplateError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, []string{"patient_name"}, terr.Placeholders)
	assert.NoFileExists(t, a.Path(model.DocumentCRConsultation, "session42.txt"))
}

func TestRenderUnknownType(t *testing.T) {
	a := NewAssembler(t.TempDir(), document.Default(), nil)
	_, err := a.Render(context.Background(), "lettre", consultationRecord(), "")
	assert.True(t, errors.Is(err, errors.ErrUnknownDocumentType))
}
