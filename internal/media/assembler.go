package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"videogen/internal/domain"
)

// EncodePolicy fixes the pixel format, resolution, and bitrates every encode
// uses so clips from different scenes are always concat-compatible.
type EncodePolicy struct {
	Width        int
	Height       int
	VideoBitrate int
	AudioBitrate int
	FrameRate    int
}

// DefaultEncodePolicy is a 1080p H.264/AAC policy safe for HLS packaging.
func DefaultEncodePolicy() EncodePolicy {
	return EncodePolicy{
		Width:        1920,
		Height:       1080,
		VideoBitrate: 2_500_000,
		AudioBitrate: 192_000,
		FrameRate:    30,
	}
}

// Assembler combines one scene's still image and narration audio into a
// single timed video clip.
type Assembler struct {
	runner *Runner
	policy EncodePolicy
}

// NewAssembler constructs a scene assembler with the given policy.
func NewAssembler(runner *Runner, policy EncodePolicy) *Assembler {
	return &Assembler{runner: runner, policy: policy}
}

// Assemble holds the still image for exactly the audio's duration and muxes
// in the audio track. The output duration is set explicitly from the probed
// audio duration rather than relying on implicit loop termination, so video
// and audio are guaranteed to end together. Returns the clip duration.
func (a *Assembler) Assemble(ctx context.Context, imagePath, audioPath, clipPath string) (float64, error) {
	for _, in := range []string{imagePath, audioPath} {
		if _, err := os.Stat(in); err != nil {
			return 0, fmt.Errorf("%w: input %s: %v", domain.ErrAssemblyFailed, in, err)
		}
	}

	duration, err := a.runner.Probe(ctx, audioPath)
	if err != nil {
		return 0, fmt.Errorf("%w: probe audio: %v", domain.ErrAssemblyFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(clipPath), 0o755); err != nil {
		return 0, fmt.Errorf("%w: ensure output dir: %v", domain.ErrAssemblyFailed, err)
	}

	args := assembleArgs(imagePath, audioPath, clipPath, duration, a.policy)
	if err := a.runner.Run(ctx, args); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrAssemblyFailed, err)
	}
	return duration, nil
}

func assembleArgs(imagePath, audioPath, clipPath string, duration float64, p EncodePolicy) []string {
	scalePad := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		p.Width, p.Height, p.Width, p.Height)

	return []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", scalePad,
		"-r", fmt.Sprintf("%d", p.FrameRate),
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-pix_fmt", "yuv420p",
		"-b:v", fmt.Sprintf("%d", p.VideoBitrate),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%d", p.AudioBitrate),
		clipPath,
	}
}
