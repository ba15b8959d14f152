package audio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/util/files"
)

// Options configures a Converter.
type Options struct {
	// Root is the audio root; subfolders are resolved below it.
	Root               string
	SourceExtensions   []string
	CanonicalExtension string
	Parallel           int
	Progress           bool
	ProgressWriter     io.Writer
}

// Converter finds recordings under the audio root and normalizes them into
// the canonical format. Originals are never modified or deleted.
type Converter struct {
	opts       Options
	transcoder Transcoder
	logger     *zap.Logger
}

// BatchResult is the outcome of one conversion batch. Records and Failures
// are sorted by original path.
type BatchResult struct {
	Records  []model.ConversionRecord
	Failures []*errors.ConversionError
	// Skipped lists source files whose canonical sibling already existed
	// or was claimed by another source in the same batch.
	Skipped []string
	Scanned int
}

func NewConverter(opts Options, transcoder Transcoder, logger *zap.Logger) *Converter {
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.CanonicalExtension == "" {
		opts.CanonicalExtension = ".mp3"
	}
	opts.CanonicalExtension = strings.ToLower(opts.CanonicalExtension)
	opts.SourceExtensions = lo.Without(lo.Map(opts.SourceExtensions, func(ext string, _ int) string {
		return strings.ToLower(ext)
	}), opts.CanonicalExtension)
	return &Converter{
		opts:       opts,
		transcoder: transcoder,
		logger:     logger.Named("audio"),
	}
}

// Root returns the audio root directory.
func (c *Converter) Root() string {
	return c.opts.Root
}

// ConvertAll converts every source-format file below subfolder (the whole
// audio root when empty) and returns one record per confirmed conversion.
// Per-file failures are logged and skipped.
func (c *Converter) ConvertAll(ctx context.Context, subfolder string) ([]model.ConversionRecord, error) {
	res, err := c.ConvertBatch(ctx, subfolder)
	if res == nil {
		return nil, err
	}
	return res.Records, err
}

// ConvertBatch is ConvertAll with the failures and skips exposed.
func (c *Converter) ConvertBatch(ctx context.Context, subfolder string) (*BatchResult, error) {
	dir, err := c.dir(subfolder)
	if err != nil {
		return nil, err
	}

	found, err := files.GetAllFiles(dir, c.opts.SourceExtensions...)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("audio directory", dir)
		}
		return nil, errors.Wrapf(err, "scan %s", dir)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].FullPath < found[j].FullPath })

	res := &BatchResult{Records: []model.ConversionRecord{}, Scanned: len(found)}
	var todo []model.FileInfo
	claimed := make(map[string]string, len(found))
	for _, f := range found {
		dst := c.canonicalPath(f.FullPath)
		if files.Exists(dst) {
			c.logger.Info("canonical file already exists, skipping", zap.String("file", f.Name), zap.String("existing", dst))
			res.Skipped = append(res.Skipped, f.FullPath)
			continue
		}
		// note.m4a and note.aac share note.mp3; the first one in path order wins
		if first, ok := claimed[dst]; ok {
			c.logger.Warn("canonical file claimed by another source, skipping",
				zap.String("file", f.Name), zap.String("source", first), zap.String("target", dst))
			res.Skipped = append(res.Skipped, f.FullPath)
			continue
		}
		claimed[dst] = f.FullPath
		todo = append(todo, f)
	}
	c.logger.Debug("scanned audio directory", zap.String("dir", dir), zap.Int("found", len(found)), zap.Int("to_convert", len(todo)))
	if len(todo) == 0 {
		return res, nil
	}

	progress := NewProgressManager(ProgressConfig{Enabled: c.opts.Progress, Writer: c.opts.ProgressWriter})
	bar := progress.CreateBar(len(todo), "Converting audio")

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, c.opts.Parallel)
	)
	for _, f := range todo {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(f model.FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()
			defer bar.Increment()

			rec, err := c.convertFile(ctx, f.FullPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				cerr := &errors.ConversionError{Path: f.FullPath, Err: err}
				c.logger.Warn("conversion failed, skipping file", zap.String("file", f.Name), zap.Error(err))
				res.Failures = append(res.Failures, cerr)
				return
			}
			res.Records = append(res.Records, rec)
		}(f)
	}
	wg.Wait()
	if ctx.Err() != nil {
		bar.Abort()
	}
	progress.Wait()

	sort.Slice(res.Records, func(i, j int) bool { return res.Records[i].OriginalPath < res.Records[j].OriginalPath })
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Path < res.Failures[j].Path })

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// convertFile transcodes one source file next to itself.
func (c *Converter) convertFile(ctx context.Context, src string) (model.ConversionRecord, error) {
	dst := c.canonicalPath(src)
	existed := files.Exists(dst)
	start := time.Now()
	if err := c.transcoder.Transcode(ctx, src, dst); err != nil {
		// a failed ffmpeg run can leave a truncated output behind; never
		// remove a file this run did not create
		if !existed {
			_ = os.Remove(dst)
		}
		return model.ConversionRecord{}, err
	}
	if !files.Exists(dst) {
		return model.ConversionRecord{}, errors.Newf("transcoder reported success but %s was not written", dst)
	}

	fields := []zap.Field{zap.String("file", filepath.Base(src)), zap.Duration("took", time.Since(start))}
	if seconds, err := c.transcoder.Duration(ctx, dst); err == nil && seconds > 0 {
		fields = append(fields, zap.Float64("audio_seconds", seconds))
	}
	c.logger.Info("converted audio file", fields...)

	return model.ConversionRecord{
		OriginalPath:    src,
		ConvertedPath:   dst,
		OriginalFormat:  extFormat(src),
		ConvertedFormat: extFormat(dst),
	}, nil
}

// dir resolves a subfolder below the audio root and refuses paths escaping it.
func (c *Converter) dir(subfolder string) (string, error) {
	if subfolder == "" {
		return c.opts.Root, nil
	}
	dir := filepath.Join(c.opts.Root, subfolder)
	rel, err := filepath.Rel(c.opts.Root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.InvalidField("subfolder", subfolder+" is outside the audio root")
	}
	return dir, nil
}

func (c *Converter) canonicalPath(src string) string {
	return files.ReplaceExt(src, c.opts.CanonicalExtension)
}

func (c *Converter) isSource(path string) bool {
	return lo.Contains(c.opts.SourceExtensions, strings.ToLower(filepath.Ext(path)))
}

func extFormat(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
