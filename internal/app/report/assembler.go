// Package report renders structured records into PDF documents using the
// layout declared in the document catalog.
package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/util/files"
)

// emptySection is printed for a section whose body renders to nothing.
const emptySection = "(non renseigné)"

// Page is a report with every placeholder already substituted.
type Page struct {
	Title    string
	Header   []string
	Sections []PageSection
}

type PageSection struct {
	Heading string
	Body    string
}

// Assembler turns records into PDF files under reportsDir.
type Assembler struct {
	reportsDir string
	catalog    *document.Catalog
	logger     *zap.Logger
}

func NewAssembler(reportsDir string, catalog *document.Catalog, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{reportsDir: reportsDir, catalog: catalog, logger: logger.Named("report")}
}

// Path returns where the report for source is written.
func (a *Assembler) Path(docType model.DocumentType, source string) string {
	return filepath.Join(a.reportsDir, docType.String(), files.BaseName(source)+".pdf")
}

// Render composes the page for record and writes it as a PDF. source names
// the output file; when empty the record's own source is used. An existing
// report is overwritten.
func (a *Assembler) Render(ctx context.Context, docType model.DocumentType, record *model.StructuredRecord, source string) (*model.ReportArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.RequiredField("record")
	}
	def, err := a.catalog.Lookup(docType.String())
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = record.Source
	}
	if source == "" {
		return nil, errors.RequiredField("report source name")
	}

	page, err := Compose(def, record)
	if err != nil {
		return nil, err
	}

	out := a.Path(def.Type, source)
	if err := files.EnsureDir(filepath.Dir(out)); err != nil {
		return nil, errors.Wrap(err, "create reports directory")
	}
	if err := writePDF(page, out); err != nil {
		return nil, errors.Wrapf(err, "write report %s", out)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, err
	}
	sum, err := files.CalculateFileHash(out)
	if err != nil {
		return nil, err
	}
	a.logger.Info("report written", zap.String("path", out), zap.Int64("bytes", info.Size()))

	return &model.ReportArtifact{
		Path:         out,
		Size:         info.Size(),
		SHA256:       sum,
		DocumentType: def.Type,
		Record:       record,
	}, nil
}

// Compose fills the template of def from record. Every placeholder must have
// a key in the record; missing ones are reported together as a TemplateError
// before anything is rendered.
func Compose(def *document.Definition, record *model.StructuredRecord) (*Page, error) {
	placeholders, err := def.Placeholders()
	if err != nil {
		return nil, &errors.TemplateError{DocumentType: def.Type.String(), Err: err}
	}
	missing := lo.Reject(placeholders, func(p string, _ int) bool { return record.Has(p) })
	if len(missing) > 0 {
		return nil, &errors.TemplateError{DocumentType: def.Type.String(), Placeholders: missing}
	}

	data := make(map[string]any, len(record.Fields))
	for k, v := range record.Fields {
		// nil prints as "<no value>"
		data[k] = lo.Ternary[any](v == nil, "", v)
	}

	exec := func(snippet string) (string, error) {
		if !strings.Contains(snippet, "{{") {
			return snippet, nil
		}
		t, err := template.New(def.Type.String()).Funcs(document.Funcs()).Option("missingkey=error").Parse(snippet)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	}

	var page Page
	var execErr error
	render := func(s string) string {
		if execErr != nil {
			return ""
		}
		out, err := exec(s)
		if err != nil {
			execErr = err
		}
		return out
	}

	page.Title = render(lo.Ternary(def.Template.Title != "", def.Template.Title, def.Title))
	for _, line := range def.Template.Header {
		page.Header = append(page.Header, render(line))
	}
	for _, s := range def.Template.Sections {
		page.Sections = append(page.Sections, PageSection{Heading: render(s.Heading), Body: render(s.Body)})
	}
	if execErr != nil {
		return nil, &errors.TemplateError{DocumentType: def.Type.String(), Err: execErr}
	}
	return &page, nil
}

func writePDF(page *Page, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; accented text has to be translated
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(page.Title, true)
	pdf.SetAuthor("vocal-assistant", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, tr(page.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range page.Header {
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}
	pdf.Ln(6)

	for _, s := range page.Sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 8, tr(s.Heading), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		body := lo.Ternary(s.Body == "", emptySection, s.Body)
		for _, line := range strings.Split(body, "\n") {
			pdf.MultiCell(0, 6, tr(strings.TrimRight(line, " ")), "", "L", false)
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}
