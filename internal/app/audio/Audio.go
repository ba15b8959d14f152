package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"vocal-assistant/internal/app/model"
)

// Transcoder rewrites one audio file into another container/codec.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
	Duration(ctx context.Context, path string) (float64, error)
}

// FFmpeg is the production Transcoder. It shells out to ffmpeg and ffprobe.
type FFmpeg struct {
	Bin      string
	ProbeBin string
	// Quality is the libmp3lame VBR quality (-q:a), 0 best to 9 worst.
	Quality string
}

func NewFFmpeg(bin, probeBin, quality string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	if probeBin == "" {
		probeBin = "ffprobe"
	}
	if quality == "" {
		quality = "2"
	}
	return &FFmpeg{Bin: bin, ProbeBin: probeBin, Quality: quality}
}

// Args returns the ffmpeg arguments converting src into an MP3 at dst.
// Existing files are never overwritten.
func (f *FFmpeg) Args(src, dst string) []string {
	return []string{"-hide_banner", "-loglevel", "error", "-n", "-i", src, "-vn", "-acodec", "libmp3lame", "-q:a", f.Quality, dst}
}

func (f *FFmpeg) Transcode(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.Bin, f.Args(src, dst)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Duration returns the length of path in seconds as reported by ffprobe.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ProbeBin, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseProbeDuration(output)
}

// ParseProbeDuration extracts format.duration from ffprobe JSON output.
func ParseProbeDuration(output []byte) (float64, error) {
	var probe model.FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}
	return strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
}
