package audio

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/util/files"
)

// Resolve locates ref on disk and makes sure it is in a provider-supported
// format, converting a source-format file (or reusing its canonical
// sibling). The returned record is nil when nothing was converted.
func (c *Converter) Resolve(ctx context.Context, ref model.AudioReference) (model.AudioReference, *model.ConversionRecord, error) {
	path, err := c.locate(ref)
	if err != nil {
		return ref, nil, err
	}

	var record *model.ConversionRecord
	if c.isSource(path) {
		dst := c.canonicalPath(path)
		if files.Exists(dst) {
			c.logger.Info("using existing canonical file", zap.String("file", filepath.Base(dst)))
		} else {
			rec, err := c.convertFile(ctx, path)
			if err != nil {
				return ref, nil, &errors.ConversionError{Path: path, Err: err}
			}
			record = &rec
		}
		path = dst
	}

	mime, err := DetectAudio(path)
	if err != nil {
		return ref, record, err
	}

	return model.AudioReference{
		Name:      filepath.Base(path),
		Subfolder: ref.Subfolder,
		Path:      path,
		MIMEType:  mime,
	}, record, nil
}

// locate returns the first existing candidate for ref: an absolute name as
// is, otherwise <root>/<subfolder>/<name> then <root>/<name>. A name without
// extension is tried with the canonical then the source extensions.
func (c *Converter) locate(ref model.AudioReference) (string, error) {
	if ref.Name == "" {
		return "", errors.RequiredField("audio file name")
	}
	if ref.Path != "" && files.Exists(ref.Path) {
		return ref.Path, nil
	}

	var dirs []string
	if filepath.IsAbs(ref.Name) {
		dirs = []string{""}
	} else {
		if ref.Subfolder != "" {
			sub, err := c.dir(ref.Subfolder)
			if err != nil {
				return "", err
			}
			dirs = append(dirs, sub)
		}
		dirs = append(dirs, c.opts.Root)
	}

	names := []string{ref.Name}
	if filepath.Ext(ref.Name) == "" {
		names = nil
		for _, ext := range append([]string{c.opts.CanonicalExtension}, c.opts.SourceExtensions...) {
			names = append(names, ref.Name+ext)
		}
	}

	var tried []string
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if files.Exists(candidate) {
				return candidate, nil
			}
			tried = append(tried, candidate)
		}
	}
	return "", errors.NotFound("audio file", strings.Join(tried, ", "))
}

// DetectAudio sniffs path and returns its MIME type. Content that is
// neither audio nor video is rejected.
func DetectAudio(path string) (string, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "detect content type of %s", path)
	}
	m := mime.String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	if strings.HasPrefix(m, "audio/") || strings.HasPrefix(m, "video/") || m == "application/octet-stream" {
		return m, nil
	}
	return "", errors.Wrapf(errors.ErrUnsupportedAudio, "%s has content type %s", filepath.Base(path), m)
}
