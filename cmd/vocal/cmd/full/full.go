package full

import (
	"context"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/pipeline"
)

var providerName string

func init() {
	Cmd.Flags().StringVarP(&providerName, "model", "m", "", cli.ProviderUsage)
}

// Cmd represents the full_processing command
var Cmd = &cobra.Command{
	Use:     "full_processing <pdf_type> <file_name>",
	Short:   "Convert, transcribe, extract and render one recording",
	Example: "  vocal full_processing cr_consultation session42 --model openai",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Run(cmd, app.Flags{}, func(ctx context.Context, o *pipeline.Orchestrator) (*pipeline.RunReport, error) {
			return o.RunFull(ctx, args[0], args[1], providerName)
		})
	},
}
