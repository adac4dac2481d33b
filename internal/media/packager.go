package media

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"videogen/internal/domain"
	"videogen/internal/infra"
)

const playlistName = "playlist.m3u8"

// Packager transcodes a continuous video into fixed-length HLS segments plus
// a playlist tagged as a complete, non-live asset. Segment boundaries are a
// function of the target segment length, not scene boundaries.
type Packager struct {
	runner         *Runner
	segmentSeconds float64
	logger         *infra.Logger
}

// NewPackager constructs a packager with the configured target segment length.
func NewPackager(runner *Runner, segmentSeconds float64, logger *infra.Logger) *Packager {
	if segmentSeconds <= 0 {
		segmentSeconds = 6
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Packager{runner: runner, segmentSeconds: segmentSeconds, logger: logger}
}

// Package transcodes finalPath into outDir and verifies the result. A missing
// playlist or a segment count inconsistent with the source duration is
// reported as ErrPackagingIncomplete even when the encoder exited cleanly.
func (p *Packager) Package(ctx context.Context, finalPath, outDir string) (*domain.StreamingPackage, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: ensure output dir: %v", domain.ErrPackagingIncomplete, err)
	}

	playlistPath := filepath.Join(outDir, playlistName)
	args := packageArgs(finalPath, outDir, playlistPath, p.segmentSeconds)

	if err := p.runner.Run(ctx, args); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPackagingIncomplete, err)
	}

	if _, err := os.Stat(playlistPath); err != nil {
		return nil, fmt.Errorf("%w: playlist missing: %v", domain.ErrPackagingIncomplete, err)
	}

	segments, err := filepath.Glob(filepath.Join(outDir, "segment-*.ts"))
	if err != nil {
		return nil, fmt.Errorf("%w: list segments: %v", domain.ErrPackagingIncomplete, err)
	}
	sort.Strings(segments)

	duration, err := p.runner.Probe(ctx, finalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: probe source: %v", domain.ErrPackagingIncomplete, err)
	}

	if !segmentCountConsistent(len(segments), duration, p.segmentSeconds) {
		return nil, fmt.Errorf("%w: %d segments for %.2fs source at %.1fs target",
			domain.ErrPackagingIncomplete, len(segments), duration, p.segmentSeconds)
	}

	p.logger.Info().
		Float64("duration", duration).
		Int("segments", len(segments)).
		Float64("segment_seconds", p.segmentSeconds).
		Msg("media: packaged streaming asset")

	return &domain.StreamingPackage{PlaylistPath: playlistPath, SegmentPaths: segments}, nil
}

func packageArgs(finalPath, outDir, playlistPath string, segmentSeconds float64) []string {
	return []string{
		"-y",
		"-i", finalPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%g", segmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_list_size", "0",
		"-hls_segment_filename", filepath.Join(outDir, "segment-%05d.ts"),
		playlistPath,
	}
}

// segmentCountConsistent checks count*target >= duration > (count-1)*target,
// with half a second of tolerance for keyframe-aligned segment splits.
func segmentCountConsistent(count int, duration, segmentSeconds float64) bool {
	if count <= 0 {
		return false
	}
	const tolerance = 0.5
	upper := float64(count)*segmentSeconds + tolerance
	lower := float64(count-1)*segmentSeconds - tolerance
	return upper >= duration && duration > lower
}

// ExpectedSegments returns the segment count a given duration should produce.
func ExpectedSegments(duration, segmentSeconds float64) int {
	if duration <= 0 || segmentSeconds <= 0 {
		return 0
	}
	return int(math.Ceil(duration / segmentSeconds))
}
