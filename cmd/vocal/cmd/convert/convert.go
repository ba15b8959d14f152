package convert

import (
	"context"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/pipeline"
)

var (
	subfolder string
	parallel  int
	progress  bool
)

func init() {
	Cmd.Flags().StringVarP(&subfolder, "subfolder", "s", "",
		"only convert recordings below this folder of the audio root, e.g. 01_cr_consultation")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "number of concurrent ffmpeg processes (default from audio.parallel)")
	Cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar even when stderr is not a terminal")
}

// Cmd represents the convert-audio command
var Cmd = &cobra.Command{
	Use:   "convert-audio",
	Short: "Convert source recordings to mp3",
	Long: `Convert source recordings to mp3

- Walk the audio root (or one subfolder) for source recordings (m4a by default)
- Write an mp3 next to each one with ffmpeg; originals are kept
- Recordings that already have an mp3 are skipped
- A file that fails to convert is reported and the batch continues`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Run(cmd, app.Flags{Progress: progress, Parallel: parallel},
			func(ctx context.Context, o *pipeline.Orchestrator) (*pipeline.RunReport, error) {
				return o.ConvertAudio(ctx, subfolder)
			})
	},
}
