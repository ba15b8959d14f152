// Package pipeline sequences the stages of a run: audio conversion,
// transcription, extraction and report rendering. Each stage can also be
// started on its own from files left by an earlier run.
package pipeline

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"vocal-assistant/internal/app/api/provider"
	"vocal-assistant/internal/app/audio"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/extraction"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/repository"
	"vocal-assistant/internal/app/workspace"
)

// AudioConverter is the part of *audio.Converter the orchestrator uses.
type AudioConverter interface {
	ConvertBatch(ctx context.Context, subfolder string) (*audio.BatchResult, error)
	Resolve(ctx context.Context, ref model.AudioReference) (model.AudioReference, *model.ConversionRecord, error)
}

// Renderer writes a report for a record.
type Renderer interface {
	Render(ctx context.Context, docType model.DocumentType, record *model.StructuredRecord, source string) (*model.ReportArtifact, error)
}

// TranscriberFactory returns the backend registered under name.
type TranscriberFactory func(name model.ProviderName) (provider.Transcriber, error)

// Deps are the collaborators of an Orchestrator. History and Metrics may
// be nil.
type Deps struct {
	Catalog      *document.Catalog
	Converter    AudioConverter
	Transcribers TranscriberFactory
	Extractor    extraction.Extractor
	Renderer     Renderer
	Workspace    *workspace.Workspace
	History      repository.RunDAO
	Metrics      *Metrics
	Logger       *zap.Logger
}

// Options are per-process pipeline settings.
type Options struct {
	DefaultProvider model.ProviderName
	// ChainAfterTranscription makes SpeechToText continue with extraction
	// and rendering.
	ChainAfterTranscription bool
}

// Orchestrator runs pipeline operations one unit of work at a time. It holds
// no per-run state and may be reused.
type Orchestrator struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.History == nil {
		deps.History = repository.NopDAO{}
	}
	return &Orchestrator{deps: deps, opts: opts, logger: deps.Logger.Named("pipeline")}
}

// WithChaining returns a copy of o whose SpeechToText does (or does not)
// continue with extraction and rendering.
func (o *Orchestrator) WithChaining(chain bool) *Orchestrator {
	c := *o
	c.opts.ChainAfterTranscription = chain
	return &c
}

// Chaining reports whether SpeechToText continues past the transcript.
func (o *Orchestrator) Chaining() bool {
	return o.opts.ChainAfterTranscription
}

// run is the mutable side of a RunReport while the operation executes.
type run struct {
	report *RunReport
	logger *zap.Logger
}

func (o *Orchestrator) start(op Operation, docType model.DocumentType, input string, prov model.ProviderName) *run {
	r := &RunReport{
		RunID:        uuid.NewString(),
		Operation:    op,
		DocumentType: docType,
		Input:        input,
		Provider:     prov,
		State:        Idle,
		StartedAt:    time.Now(),
	}
	fields := []zap.Field{zap.String("run_id", r.RunID), zap.String("operation", string(op))}
	if docType != "" {
		fields = append(fields, zap.String("document_type", docType.String()))
	}
	return &run{report: r, logger: o.logger.With(fields...)}
}

// enter moves the run forward to s.
func (r *run) enter(s State) {
	if s <= r.report.State {
		// stages are entered in order by construction
		panic("pipeline: backward transition from " + r.report.State.String() + " to " + s.String())
	}
	r.report.State = s
	r.logger.Debug("entering stage", zap.Stringer("stage", s))
}

// stage runs fn inside state s and records its duration.
func (o *Orchestrator) stage(r *run, s State, fn func() error) error {
	r.enter(s)
	began := time.Now()
	err := fn()
	o.deps.Metrics.observeStage(s, time.Since(began), err)
	return err
}

// fail turns err into a StageError, logs it with the run context and closes
// the run as Failed.
func (o *Orchestrator) fail(ctx context.Context, r *run, err error) (*RunReport, error) {
	rep := r.report
	serr := &errors.StageError{
		Stage:    lo.Ternary(rep.State == Idle, "preparing", strings.ToLower(rep.State.String())),
		Input:    rep.Input,
		Provider: rep.Provider.String(),
		Err:      err,
	}
	rep.Stage = rep.State
	rep.State = Failed
	rep.Outcome = OutcomeFailed
	rep.Err = serr

	r.logger.Error("Error processing file",
		zap.String("file", rep.Input),
		zap.String("stage", serr.Stage),
		zap.String("provider", serr.Provider),
		zap.Error(err))
	o.finish(ctx, r)
	return rep, serr
}

func (o *Orchestrator) succeed(ctx context.Context, r *run) (*RunReport, error) {
	rep := r.report
	rep.State = Done
	rep.Outcome = lo.Ternary(len(rep.ConversionFailures) > 0, PartiallyFailed, Succeeded)
	o.finish(ctx, r)
	return rep, nil
}

func (o *Orchestrator) finish(ctx context.Context, r *run) {
	rep := r.report
	rep.Duration = time.Since(rep.StartedAt)
	o.deps.Metrics.observeRun(rep)

	// history must be written even when ctx was cancelled
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.deps.History.RecordRun(hctx, rep.Entry()); err != nil {
		r.logger.Warn("could not record run history", zap.Error(err))
	}
}

// ConvertAudio converts every source recording below subfolder of the audio
// root. Per-file failures do not stop the batch; they make the outcome
// PartiallyFailed.
func (o *Orchestrator) ConvertAudio(ctx context.Context, subfolder string) (*RunReport, error) {
	r := o.start(OpConvertAudio, "", subfolder, "")
	rep := r.report

	var res *audio.BatchResult
	err := o.stage(r, Converting, func() error {
		var err error
		res, err = o.deps.Converter.ConvertBatch(ctx, subfolder)
		return err
	})
	if res != nil {
		rep.Conversions = res.Records
		rep.Skipped = res.Skipped
		rep.ConversionFailures = lo.Map(res.Failures, func(f *errors.ConversionError, _ int) error { return f })
	}
	if err != nil {
		return o.fail(ctx, r, err)
	}

	o.logConversions(r, res)
	return o.succeed(ctx, r)
}

func (o *Orchestrator) logConversions(r *run, res *audio.BatchResult) {
	if len(res.Records) == 0 {
		r.logger.Warn("No files were converted. Check that source recordings exist in the audio folder and have not already been converted.",
			zap.Int("scanned", res.Scanned),
			zap.Int("skipped", len(res.Skipped)),
			zap.Int("failed", len(res.Failures)))
		return
	}
	names := lo.Map(res.Records, func(rec model.ConversionRecord, _ int) string {
		return filepath.Base(rec.OriginalPath) + " -> " + filepath.Base(rec.ConvertedPath)
	})
	r.logger.Info("Converted audio files",
		zap.Int("converted", len(res.Records)),
		zap.Int("failed", len(res.Failures)),
		zap.Strings("files", names))
}

// SpeechToText transcribes one recording and saves the transcript. With
// chaining enabled it goes on to extraction and rendering.
func (o *Orchestrator) SpeechToText(ctx context.Context, docType, fileName, providerName string) (*RunReport, error) {
	return o.fromAudio(ctx, OpSpeechToText, docType, fileName, providerName, o.opts.ChainAfterTranscription)
}

// RunFull runs every stage for one recording.
func (o *Orchestrator) RunFull(ctx context.Context, docType, fileName, providerName string) (*RunReport, error) {
	return o.fromAudio(ctx, OpFullProcessing, docType, fileName, providerName, true)
}

func (o *Orchestrator) fromAudio(ctx context.Context, op Operation, docType, fileName, providerName string, downstream bool) (*RunReport, error) {
	name := model.ProviderName(providerName)
	if providerName == "" {
		name = o.opts.DefaultProvider
	}
	r := o.start(op, model.DocumentType(docType), fileName, name)
	rep := r.report

	// unknown names and unusable providers fail before any work
	def, err := o.deps.Catalog.Lookup(docType)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	rep.DocumentType = def.Type
	transcriber, err := o.deps.Transcribers(name)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	rep.Provider = transcriber.Name()

	var ref model.AudioReference
	err = o.stage(r, Converting, func() error {
		var conv *model.ConversionRecord
		var err error
		ref, conv, err = o.deps.Converter.Resolve(ctx, model.AudioReference{Name: fileName, Subfolder: def.Subfolder})
		if conv != nil {
			rep.Conversions = append(rep.Conversions, *conv)
		}
		return err
	})
	if err != nil {
		return o.fail(ctx, r, err)
	}

	err = o.stage(r, Transcribing, func() error {
		res, err := transcriber.Transcribe(ctx, def.Type, ref)
		if err != nil {
			return err
		}
		if res.Source == "" {
			res.Source = ref.Path
		}
		rep.Transcription = res
		rep.TranscriptPath, err = o.deps.Workspace.WriteTranscript(def.Type, ref.Path, res.Text)
		return err
	})
	if err != nil {
		return o.fail(ctx, r, err)
	}
	r.logger.Info("Transcription saved",
		zap.String("file", ref.Name),
		zap.String("provider", rep.Provider.String()),
		zap.String("path", rep.TranscriptPath),
		zap.Int("chars", len(rep.Transcription.Text)))

	if downstream {
		if err := o.extractAndRender(ctx, r, def, rep.TranscriptPath, rep.Transcription.Text, true); err != nil {
			return o.fail(ctx, r, err)
		}
	}

	r.logger.Info("Successfully processed file " + fileName)
	return o.succeed(ctx, r)
}

// ExtractText sends a saved transcript to the extraction service, saves the
// record and, when render is set, writes the report.
func (o *Orchestrator) ExtractText(ctx context.Context, docType, textFile string, render bool) (*RunReport, error) {
	r := o.start(OpTextExtraction, model.DocumentType(docType), textFile, "")
	rep := r.report

	def, err := o.deps.Catalog.Lookup(docType)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	rep.DocumentType = def.Type

	path, text, err := o.deps.Workspace.ReadTranscript(def.Type, textFile)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	rep.TranscriptPath = path

	if err := o.extractAndRender(ctx, r, def, path, text, render); err != nil {
		return o.fail(ctx, r, err)
	}

	r.logger.Info("Successfully processed file " + filepath.Base(path))
	return o.succeed(ctx, r)
}

func (o *Orchestrator) extractAndRender(ctx context.Context, r *run, def *document.Definition, transcriptPath, text string, render bool) error {
	rep := r.report
	source := filepath.Base(transcriptPath)

	err := o.stage(r, Extracting, func() error {
		rec, err := o.deps.Extractor.Extract(ctx, extraction.Request{DocumentType: def.Type, Text: text, Source: source})
		if err != nil {
			return err
		}
		rep.Record = rec
		rep.RecordPath, err = o.deps.Workspace.WriteRecord(rec)
		return err
	})
	if err != nil {
		return err
	}
	if fields, err := json.Marshal(rep.Record.Fields); err == nil {
		r.logger.Info("Response from extraction service: " + string(fields))
	}

	if !render {
		return nil
	}
	return o.stage(r, Rendering, func() error {
		artifact, err := o.deps.Renderer.Render(ctx, def.Type, rep.Record, source)
		if err != nil {
			return err
		}
		rep.Artifact = artifact
		r.logger.Info("Report generated", zap.String("path", artifact.Path))
		return nil
	})
}

// RenderRecord renders a report from a record saved by an earlier run.
func (o *Orchestrator) RenderRecord(ctx context.Context, docType, recordFile string) (*RunReport, error) {
	r := o.start(OpPDFGeneration, model.DocumentType(docType), recordFile, "")
	rep := r.report

	def, err := o.deps.Catalog.Lookup(docType)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	rep.DocumentType = def.Type

	path, rec, err := o.deps.Workspace.ReadRecord(def.Type, recordFile)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	rep.RecordPath = path
	rep.Record = rec

	err = o.stage(r, Rendering, func() error {
		artifact, err := o.deps.Renderer.Render(ctx, def.Type, rec, rec.Source)
		if err != nil {
			return err
		}
		rep.Artifact = artifact
		return nil
	})
	if err != nil {
		return o.fail(ctx, r, err)
	}

	r.logger.Info("Successfully processed file "+filepath.Base(path), zap.String("report", rep.Artifact.Path))
	return o.succeed(ctx, r)
}
