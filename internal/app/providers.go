// Package app assembles the pipeline components from configuration.
package app

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	"vocal-assistant/internal/api/server"
	v1routes "vocal-assistant/internal/api/v1/routes"
	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/audio"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/extraction"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/pipeline"
	"vocal-assistant/internal/app/report"
	"vocal-assistant/internal/app/repository"
	"vocal-assistant/internal/app/repository/pg"
	"vocal-assistant/internal/app/repository/sqlite"
	"vocal-assistant/internal/app/workspace"
	"vocal-assistant/internal/config"

	// transcription backends register themselves
	_ "vocal-assistant/internal/app/api/google"
	_ "vocal-assistant/internal/app/api/openai/whisper"
)

// Flags are command-line overrides that are not part of the settings file.
type Flags struct {
	// Progress forces progress bars even when stderr is not a terminal.
	Progress bool
	// Parallel overrides audio.parallel when > 0.
	Parallel int
}

// App is what a command needs to run pipeline operations.
type App struct {
	Orchestrator *pipeline.Orchestrator
	Catalog      *document.Catalog
	Metrics      *pipeline.Metrics
	History      repository.RunDAO
	Settings     *config.Settings
}

func provideCatalog(settings *config.Settings) (*document.Catalog, error) {
	return document.Load(settings.DocumentsFile)
}

func provideTranscoder(settings *config.Settings) audio.Transcoder {
	a := settings.Audio
	return audio.NewFFmpeg(a.FFmpegPath, a.FFprobePath, a.Quality)
}

func provideConverter(settings *config.Settings, flags Flags, transcoder audio.Transcoder, logger *zap.Logger) *audio.Converter {
	a := settings.Audio
	parallel := a.Parallel
	if flags.Parallel > 0 {
		parallel = flags.Parallel
	}
	return audio.NewConverter(audio.Options{
		Root:               settings.Paths.AudioRoot,
		SourceExtensions:   a.SourceExtensions,
		CanonicalExtension: a.CanonicalExtension,
		Parallel:           parallel,
		Progress:           audio.ShouldShowProgress(flags.Progress),
		ProgressWriter:     os.Stderr,
	}, transcoder, logger)
}

// provideHTTPClient returns the client shared by providers and extraction.
// Timeouts are applied per request through the context.
func provideHTTPClient() *http.Client {
	return &http.Client{}
}

func provideTranscriberFactory(settings *config.Settings, catalog *document.Catalog, client *http.Client, logger *zap.Logger) pipeline.TranscriberFactory {
	return func(name model.ProviderName) (provider.Transcriber, error) {
		return provider.New(name.String(), provider.Options{
			Settings:   settings.Transcription,
			Catalog:    catalog,
			Logger:     logger,
			HTTPClient: client,
		})
	}
}

func provideExtractor(settings *config.Settings, catalog *document.Catalog, client *http.Client, logger *zap.Logger) extraction.Extractor {
	e := settings.Extraction
	return extraction.NewRetryingExtractor(
		extraction.NewClient(e, catalog, client, logger),
		e.MaxRetries, e.RetryBackoff, logger,
	)
}

func provideAssembler(settings *config.Settings, catalog *document.Catalog, logger *zap.Logger) *report.Assembler {
	return report.NewAssembler(settings.Paths.ReportsDir, catalog, logger)
}

func provideWorkspace(settings *config.Settings) *workspace.Workspace {
	return workspace.New(settings.Paths)
}

// provideHistory opens the configured run history. History is best effort:
// when the database cannot be opened the run continues without it.
func provideHistory(ctx context.Context, settings *config.Settings, logger *zap.Logger) (repository.RunDAO, func(), error) {
	h := settings.History
	var (
		store *repository.CommonDB
		err   error
	)
	switch h.Driver {
	case "sqlite3":
		store, err = sqlite.Open(ctx, h.DSN)
	case "postgres":
		store, err = pg.Open(ctx, h.DSN)
	default:
		return repository.NopDAO{}, func() {}, nil
	}
	if err != nil {
		logger.Warn("run history disabled", zap.String("driver", h.Driver), zap.Error(err))
		return repository.NopDAO{}, func() {}, nil
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing run history", zap.Error(err))
		}
	}, nil
}

func providePipelineOptions(settings *config.Settings) pipeline.Options {
	return pipeline.Options{
		DefaultProvider:         model.ProviderName(settings.Transcription.DefaultProvider),
		ChainAfterTranscription: settings.Pipeline.ChainAfterTranscription,
	}
}

// provideServer mounts the orchestrator behind the HTTP API.
func provideServer(settings *config.Settings, o *pipeline.Orchestrator, catalog *document.Catalog, history repository.RunDAO, metrics *pipeline.Metrics, logger *zap.Logger) *server.Server {
	container := &v1routes.ServiceContainer{
		Runner:  o,
		History: history,
		Catalog: catalog,
	}
	return server.NewServer(settings.Server, container, metrics, logger.Named("api"))
}
