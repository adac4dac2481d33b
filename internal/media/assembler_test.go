package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"videogen/internal/domain"
)

func TestAssembleArgsSetDurationExplicitly(t *testing.T) {
	args := assembleArgs("scene.png", "narration.mp3", "clip.mp4", 12.345, DefaultEncodePolicy())
	joined := strings.Join(args, " ")

	// The output duration comes from the probed audio, never from -shortest.
	if !strings.Contains(joined, "-t 12.345") {
		t.Fatalf("duration not set explicitly: %s", joined)
	}
	if strings.Contains(joined, "-shortest") {
		t.Fatalf("must not rely on -shortest: %s", joined)
	}
	if !strings.Contains(joined, "-loop 1 -i scene.png -i narration.mp3") {
		t.Fatalf("inputs wrong: %s", joined)
	}
	if !strings.Contains(joined, "-pix_fmt yuv420p") {
		t.Fatalf("pixel format missing: %s", joined)
	}
	if !strings.Contains(joined, "-tune stillimage") {
		t.Fatalf("stillimage tune missing: %s", joined)
	}
	if args[len(args)-1] != "clip.mp4" {
		t.Fatalf("output not last: %s", joined)
	}
}

func TestAssembleArgsApplyPolicy(t *testing.T) {
	p := EncodePolicy{Width: 1280, Height: 720, VideoBitrate: 1_000_000, AudioBitrate: 128_000, FrameRate: 25}
	joined := strings.Join(assembleArgs("i.png", "a.mp3", "c.mp4", 5, p), " ")

	if !strings.Contains(joined, "scale=1280:720") {
		t.Fatalf("resolution not applied: %s", joined)
	}
	if !strings.Contains(joined, "-b:v 1000000") || !strings.Contains(joined, "-b:a 128000") {
		t.Fatalf("bitrates not applied: %s", joined)
	}
	if !strings.Contains(joined, "-r 25") {
		t.Fatalf("frame rate not applied: %s", joined)
	}
}

func TestAssembleFailsOnMissingInput(t *testing.T) {
	a := NewAssembler(NewRunner("ffmpeg", "ffprobe", nil), DefaultEncodePolicy())
	missing := filepath.Join(t.TempDir(), "nope.png")

	_, err := a.Assemble(context.Background(), missing, missing, filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, domain.ErrAssemblyFailed) {
		t.Fatalf("err = %v, want ErrAssemblyFailed", err)
	}
}
