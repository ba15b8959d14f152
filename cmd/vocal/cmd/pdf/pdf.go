package pdf

import (
	"context"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/pipeline"
)

// Cmd represents the pdf_generation command
var Cmd = &cobra.Command{
	Use:   "pdf_generation <pdf_type> <record.json>",
	Short: "Render a saved record to PDF",
	Long: `Render a saved record to PDF

The record is looked up as given, then in <records_dir>/<pdf_type>/. The
report is written to <reports_dir>/<pdf_type>/<name>.pdf, replacing any
earlier version.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Run(cmd, app.Flags{}, func(ctx context.Context, o *pipeline.Orchestrator) (*pipeline.RunReport, error) {
			return o.RenderRecord(ctx, args[0], args[1])
		})
	},
}
