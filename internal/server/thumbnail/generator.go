// Package thumbnail produces contact-sheet images for downloaded videos: a
// single JPEG tiling frames sampled evenly across the video's duration.
// Generation is best-effort and runs off the delivery path; a failure only
// means the file keeps no thumbnail.
package thumbnail

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/premrelay/internal/filex"
	"github.com/dmitrijs2005/premrelay/internal/logging"
)

// ffmpeg/ffprobe invocation constants.
const (
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"

	FFprobeLogLevel       = "error"
	FFprobeShowDuration   = "format=duration"
	FFprobeShowDimensions = "stream=width,height"
	FFprobeCSVFormat      = "csv=p=0"
	FFprobeCSVFormatX     = "csv=s=x:p=0"

	JPEGQuality     = "2"
	OutputExtension = ".jpg"
)

// Generator renders contact sheets under <root>/<requester_id>/<hash>.jpg.
type Generator struct {
	root       string
	frames     int
	frameWidth int
	logger     logging.Logger
}

func NewGenerator(root string, frames, frameWidth int, logger logging.Logger) *Generator {
	return &Generator{
		root:       root,
		frames:     frames,
		frameWidth: frameWidth,
		logger:     logger.With("module", "thumbnail"),
	}
}

// Generate probes the video for its duration, samples evenly spaced frames,
// and tiles them into one JPEG in a single ffmpeg pass. The output is
// verified by re-probing its dimensions. It returns the written thumbnail
// path.
func (g *Generator) Generate(ctx context.Context, videoPath string, requesterID int64, hash string) (string, error) {
	duration, err := g.probeDuration(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", videoPath, err)
	}
	if duration <= 0 {
		return "", fmt.Errorf("probe %s: no duration metadata", videoPath)
	}

	dir, err := filex.EnsureDir(g.root, strconv.FormatInt(requesterID, 10))
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(dir, hash+OutputExtension)

	cols, rows := gridLayout(g.frames)
	args := buildFFmpegArgs(videoPath, outPath, duration, g.frames, g.frameWidth, cols, rows)

	cmd := exec.CommandContext(ctx, FFmpegCommand, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, truncate(string(out), 512))
	}

	width, height, err := g.probeDimensions(ctx, outPath)
	if err != nil {
		return "", fmt.Errorf("verify %s: %w", outPath, err)
	}
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("verify %s: invalid dimensions %dx%d", outPath, width, height)
	}

	g.logger.Info(ctx, "contact sheet written", "path", outPath, "width", width, "height", height)
	return outPath, nil
}

// probeDuration returns the container duration in seconds.
func (g *Generator) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowDuration,
		"-of", FFprobeCSVFormat,
		path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// probeDimensions returns the first video stream's width and height.
func (g *Generator) probeDimensions(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-select_streams", "v:0",
		"-show_entries", FFprobeShowDimensions,
		"-of", FFprobeCSVFormatX,
		path)
	output, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	dims := strings.Split(strings.TrimSpace(string(output)), "x")
	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("unexpected ffprobe output: %q", string(output))
	}

	width, err := strconv.Atoi(dims[0])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse width: %w", err)
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse height: %w", err)
	}

	return width, height, nil
}

// gridLayout sizes the contact-sheet grid for n frames: up to 4 frames fit
// one row, up to 9 use 3 columns, larger sheets use 4.
func gridLayout(n int) (cols, rows int) {
	switch {
	case n <= 4:
		return n, 1
	case n <= 9:
		cols = 3
	default:
		cols = 4
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

// buildFFmpegArgs assembles the single-pass extraction: sample n evenly
// spaced frames, scale each to the target width, tile into the grid.
func buildFFmpegArgs(inputPath, outputPath string, duration float64, n, width, cols, rows int) []string {
	fps := float64(n) / duration

	filter := fmt.Sprintf("fps=%f,scale=%d:-1,tile=%dx%d", fps, width, cols, rows)

	return []string{
		"-y", // Overwrite output file
		"-i", inputPath,
		"-vf", filter,
		"-frames:v", "1",
		"-q:v", JPEGQuality,
		outputPath,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
