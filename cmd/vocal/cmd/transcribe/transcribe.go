package transcribe

import (
	"context"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/pipeline"
)

var (
	providerName string
	chain        bool
)

func init() {
	Cmd.Flags().StringVarP(&providerName, "model", "m", "", cli.ProviderUsage)
	Cmd.Flags().BoolVar(&chain, "chain", false, "continue with extraction and PDF generation (overrides pipeline.chain_after_transcription)")
}

// Cmd represents the speech_to_text command
var Cmd = &cobra.Command{
	Use:   "speech_to_text <pdf_type> <file_name>",
	Short: "Transcribe one recording",
	Long: `Transcribe one recording

The recording is looked up in the document type's subfolder of the audio
root, converted to mp3 when needed, and the transcript is written to
<text_dir>/<pdf_type>/<name>.txt.`,
	Example: "  vocal speech_to_text cr_consultation session42.m4a --model google",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		docType, fileName := args[0], args[1]
		return cli.Run(cmd, app.Flags{}, func(ctx context.Context, o *pipeline.Orchestrator) (*pipeline.RunReport, error) {
			o = applyChainFlag(cmd, o)
			return o.SpeechToText(ctx, docType, fileName, providerName)
		})
	},
}

// applyChainFlag lets an explicit --chain, true or false, win over the
// configured pipeline.chain_after_transcription.
func applyChainFlag(cmd *cobra.Command, o *pipeline.Orchestrator) *pipeline.Orchestrator {
	if cmd.Flags().Changed("chain") {
		return o.WithChaining(chain)
	}
	return o
}
