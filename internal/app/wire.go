//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"vocal-assistant/internal/api/server"
	"vocal-assistant/internal/app/audio"
	"vocal-assistant/internal/app/pipeline"
	"vocal-assistant/internal/app/report"
	"vocal-assistant/internal/app/repository"
	"vocal-assistant/internal/config"
)

var componentSet = wire.NewSet(
	provideCatalog,
	provideTranscoder,
	provideConverter,
	provideHTTPClient,
	provideTranscriberFactory,
	provideExtractor,
	provideAssembler,
	provideWorkspace,
	provideHistory,
	pipeline.NewMetrics,
	wire.Bind(new(pipeline.AudioConverter), new(*audio.Converter)),
	wire.Bind(new(pipeline.Renderer), new(*report.Assembler)),
	wire.Struct(new(pipeline.Deps), "*"),
	providePipelineOptions,
	pipeline.NewOrchestrator,
)

// InitializeApp builds the orchestrator and everything it needs from the
// loaded settings. The cleanup closes the run history.
func InitializeApp(ctx context.Context, settings *config.Settings, logger *zap.Logger, flags Flags) (*App, func(), error) {
	wire.Build(componentSet, wire.Struct(new(App), "*"))
	return &App{}, nil, nil
}

// InitializeHistory opens only the run history.
func InitializeHistory(ctx context.Context, settings *config.Settings, logger *zap.Logger) (repository.RunDAO, func(), error) {
	wire.Build(provideHistory)
	return nil, nil, nil
}

// InitializeServer builds the HTTP API over a fresh orchestrator. Runs
// started over HTTP never draw progress bars.
func InitializeServer(ctx context.Context, settings *config.Settings, logger *zap.Logger) (*server.Server, func(), error) {
	wire.Build(componentSet, wire.Value(Flags{}), provideServer)
	return nil, nil, nil
}
