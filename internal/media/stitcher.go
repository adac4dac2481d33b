package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"videogen/internal/domain"
	"videogen/internal/infra"
)

// Stitcher concatenates an ordered list of clips into one continuous video.
type Stitcher struct {
	runner    *Runner
	policy    EncodePolicy
	normalize bool
	logger    *infra.Logger
}

// NewStitcher constructs a stitcher. With normalize set, every clip is first
// scaled to the policy resolution before concatenation.
func NewStitcher(runner *Runner, policy EncodePolicy, normalize bool, logger *infra.Logger) *Stitcher {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Stitcher{runner: runner, policy: policy, normalize: normalize, logger: logger}
}

// Stitch concatenates the clips in the given order into outPath. The input
// order is playback order and is preserved exactly. An empty list or
// duplicate entries fail with ErrInvalidClipList before ffmpeg is invoked.
func (s *Stitcher) Stitch(ctx context.Context, clipPaths []string, outPath string) error {
	graph := NewConcatGraph(s.policy.Width, s.policy.Height, s.normalize)
	for _, clip := range clipPaths {
		graph.Add(clip)
	}

	filter, err := graph.Filter()
	if err != nil {
		if errors.Is(err, domain.ErrInvalidClipList) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrStitchFailed, err)
	}

	// The full graph goes to the log before executing so encoder failures can
	// be diagnosed from the description alone.
	s.logger.Info().
		Int("clips", graph.Len()).
		Str("filter", filter).
		Str("out", filepath.Base(outPath)).
		Msg("media: stitching clips")

	args := graph.InputArgs()
	args = append([]string{"-y"}, args...)
	args = append(args,
		"-filter_complex", filter,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-b:v", fmt.Sprintf("%d", s.policy.VideoBitrate),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%d", s.policy.AudioBitrate),
		outPath,
	)

	if err := s.runner.Run(ctx, args); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStitchFailed, err)
	}
	return nil
}
