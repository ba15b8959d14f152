// Package export writes run history to spreadsheet files.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tealeg/xlsx"

	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/util/files"
)

// SheetName is the worksheet runs are written to.
const SheetName = "Runs"

var header = []string{
	"Run ID", "Started", "Operation", "Document Type", "Input",
	"Provider", "Outcome", "Stage", "Duration (ms)", "Error",
}

// RunsToExcel writes one row per run, newest first as given.
func RunsToExcel(runs []model.RunEntry, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().Value = h
	}

	for _, r := range runs {
		row := sheet.AddRow()
		row.AddCell().Value = r.RunID
		row.AddCell().Value = r.StartedAt.UTC().Format(time.RFC3339)
		row.AddCell().Value = r.Operation
		row.AddCell().Value = r.DocumentType.String()
		row.AddCell().Value = r.Input
		row.AddCell().Value = string(r.Provider)
		row.AddCell().Value = r.Outcome
		row.AddCell().Value = r.Stage
		row.AddCell().SetInt64(r.Duration.Milliseconds())
		row.AddCell().Value = r.ErrorMessage
	}

	if err := files.EnsureDir(filepath.Dir(outputFilePath)); err != nil {
		return err
	}
	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save %s: %w", outputFilePath, err)
	}
	return nil
}
