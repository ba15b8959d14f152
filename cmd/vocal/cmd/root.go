package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/cmd/vocal/cmd/consultation"
	"vocal-assistant/cmd/vocal/cmd/convert"
	"vocal-assistant/cmd/vocal/cmd/documents"
	"vocal-assistant/cmd/vocal/cmd/extract"
	"vocal-assistant/cmd/vocal/cmd/full"
	"vocal-assistant/cmd/vocal/cmd/history"
	"vocal-assistant/cmd/vocal/cmd/pdf"
	"vocal-assistant/cmd/vocal/cmd/serve"
	"vocal-assistant/cmd/vocal/cmd/transcribe"
	"vocal-assistant/cmd/vocal/cmd/version"
	"vocal-assistant/internal/app/logging"
	"vocal-assistant/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	Verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vocal",
	Short: "Turn dictated voice recordings into structured records and PDF reports",
	Long: `Turn dictated voice recordings into structured records and PDF reports.

- convert-audio normalizes recordings (m4a) into mp3 with ffmpeg
- speech_to_text transcribes a recording with OpenAI or Google
- cr_consultation / text_extraction send a transcript to the extraction service
- pdf_generation renders a saved record
- full_processing runs every stage for one recording`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

// prepare loads the configuration and builds the logger shared by every
// subcommand.
func prepare(cmd *cobra.Command, _ []string) error {
	settings, warnings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	opts := logging.Options{Level: settings.Log.Level, Format: settings.Log.Format}
	if logLevel != "" {
		opts.Level = logLevel
	}
	if Verbose {
		opts.Level = "debug"
	}
	if logFormat != "" {
		opts.Format = logFormat
	}
	logger, err := logging.NewLogger(opts)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}
	logger.Debug("configuration loaded",
		zap.String("data_root", settings.Paths.DataRoot),
		zap.String("provider", settings.Transcription.DefaultProvider),
		zap.String("history", settings.History.Driver))

	cmd.SetContext(cli.WithEnv(cmd.Context(), &cli.Env{Settings: settings, Logger: logger}))
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if code := ExitCode(err); code != 0 {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(code)
	}
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(convert.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(consultation.Cmd)
	rootCmd.AddCommand(extract.Cmd)
	rootCmd.AddCommand(pdf.Cmd)
	rootCmd.AddCommand(full.Cmd)
	rootCmd.AddCommand(documents.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
