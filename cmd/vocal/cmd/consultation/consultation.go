package consultation

import (
	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/extract"
	"vocal-assistant/internal/app/model"
)

var skipRender bool

func init() {
	Cmd.Flags().BoolVar(&skipRender, "skip-render", false, "save the extracted record without generating the PDF")
}

// Cmd represents the cr_consultation command
var Cmd = &cobra.Command{
	Use:     "cr_consultation <filename>",
	Short:   "Extract a consultation report from a transcript",
	Long:    `Shorthand for "text_extraction cr_consultation <filename>".`,
	Example: "  vocal cr_consultation session42.txt",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return extract.Run(cmd, model.DocumentCRConsultation.String(), args[0], skipRender)
	},
}
