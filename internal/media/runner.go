// Package media drives ffmpeg and ffprobe subprocesses for scene assembly,
// clip stitching, and stream packaging. Encode graphs are built through typed
// builders so stream-count mismatches surface before a subprocess ever runs.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"videogen/internal/infra"
)

// Runner executes media engine subprocesses with captured diagnostics.
type Runner struct {
	ffmpeg  string
	ffprobe string
	logger  *infra.Logger
}

// NewRunner returns a runner using the given ffmpeg/ffprobe binaries.
func NewRunner(ffmpegBin, ffprobeBin string, logger *infra.Logger) *Runner {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Runner{ffmpeg: ffmpegBin, ffprobe: ffprobeBin, logger: logger}
}

// Run executes ffmpeg with the given arguments. On a non-zero exit the tail
// of stderr is folded into the returned error.
func (r *Runner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug().Strs("args", args).Msg("media: ffmpeg start")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderrTail(stderr.String()))
	}
	return nil
}

// Probe returns the container duration of the media file at path in seconds.
func (r *Runner) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, r.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeDuration(string(out))
}

func parseProbeDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("ffprobe: no duration reported")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ffprobe: non-positive duration %v", d)
	}
	return d, nil
}

// stderrTail keeps the last few lines of encoder output, which is where
// ffmpeg reports the actual failure.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
