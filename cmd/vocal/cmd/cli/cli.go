// Package cli holds what every vocal subcommand shares: the loaded
// settings and logger, and the helper that runs one pipeline operation.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/pipeline"
	"vocal-assistant/internal/config"
)

// Env is prepared by the root command before any subcommand runs.
type Env struct {
	Settings *config.Settings
	Logger   *zap.Logger
}

type envKey struct{}

func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFrom returns the Env stored by the root command.
func EnvFrom(ctx context.Context) (*Env, error) {
	env, ok := ctx.Value(envKey{}).(*Env)
	if !ok || env == nil {
		return nil, fmt.Errorf("command environment not initialized")
	}
	return env, nil
}

// Operation is one orchestrator call.
type Operation func(ctx context.Context, o *pipeline.Orchestrator) (*pipeline.RunReport, error)

// Run wires the application, executes op, prints a summary and exports
// metrics. The returned error is the operation's.
func Run(cmd *cobra.Command, flags app.Flags, op Operation) error {
	ctx := cmd.Context()
	env, err := EnvFrom(ctx)
	if err != nil {
		return err
	}

	a, cleanup, err := app.InitializeApp(ctx, env.Settings, env.Logger, flags)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, runErr := op(ctx, a.Orchestrator)
	if rep != nil {
		PrintReport(cmd.OutOrStdout(), rep)
	}

	if path := env.Settings.Metrics.Textfile; path != "" {
		if err := a.Metrics.WriteTextfile(path); err != nil {
			env.Logger.Warn("could not write metrics", zap.String("path", path), zap.Error(err))
		}
	}
	return runErr
}

// PrintReport writes a short human summary of rep.
func PrintReport(w io.Writer, rep *pipeline.RunReport) {
	fmt.Fprintf(w, "%s %s: %s", rep.Operation, rep.Input, rep.Outcome)
	if rep.Provider != "" && rep.Transcription != nil {
		fmt.Fprintf(w, " (provider %s)", rep.Provider)
	}
	fmt.Fprintln(w)

	for _, c := range rep.Conversions {
		fmt.Fprintf(w, "  converted   %s -> %s\n", filepath.Base(c.OriginalPath), filepath.Base(c.ConvertedPath))
	}
	for _, f := range rep.ConversionFailures {
		fmt.Fprintf(w, "  failed      %v\n", f)
	}
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(w, "  skipped     %d already converted\n", len(rep.Skipped))
	}
	if rep.TranscriptPath != "" {
		fmt.Fprintf(w, "  transcript  %s\n", rep.TranscriptPath)
	}
	if rep.RecordPath != "" {
		fmt.Fprintf(w, "  record      %s\n", rep.RecordPath)
	}
	if rep.Artifact != nil {
		fmt.Fprintf(w, "  report      %s (sha256 %s)\n", rep.Artifact.Path, rep.Artifact.SHA256)
	}
	if rep.Err != nil {
		fmt.Fprintf(w, "  error       %s\n", strings.TrimSpace(rep.Err.Error()))
	}
}

// ProviderUsage is the help text of --model.
const ProviderUsage = "transcription provider: openai or google (default from transcription.default_provider)"
