package extract

import (
	"context"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/pipeline"
)

var skipRender bool

func init() {
	Cmd.Flags().BoolVar(&skipRender, "skip-render", false, "save the extracted record without generating the PDF")
}

// Cmd represents the text_extraction command
var Cmd = &cobra.Command{
	Use:   "text_extraction <pdf_type> <filename>",
	Short: "Extract a structured record from a transcript and render it",
	Long: `Extract a structured record from a transcript and render it

The transcript is looked up as given, then in <text_dir>/<pdf_type>/. Its
text is sent to the extraction service of the document type; the answer is
validated against the document schema, saved to
<records_dir>/<pdf_type>/<name>.json and rendered to PDF.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd, args[0], args[1], skipRender)
	},
}

// Run executes the extraction for docType on textFile.
func Run(cmd *cobra.Command, docType, textFile string, skip bool) error {
	return cli.Run(cmd, app.Flags{}, func(ctx context.Context, o *pipeline.Orchestrator) (*pipeline.RunReport, error) {
		return o.ExtractText(ctx, docType, textFile, !skip)
	})
}
