package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigRequiresOpenAIKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/videogen")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/videogen")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Fatalf("ChatModel = %q, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.SegmentSeconds != 6 {
		t.Fatalf("SegmentSeconds = %v, want 6", cfg.SegmentSeconds)
	}
	if cfg.SceneParallelism != 3 {
		t.Fatalf("SceneParallelism = %d, want 3", cfg.SceneParallelism)
	}
	if cfg.RenderTimeout != 30*time.Second {
		t.Fatalf("RenderTimeout = %v, want 30s", cfg.RenderTimeout)
	}
	if cfg.FFmpegBin != "ffmpeg" {
		t.Fatalf("FFmpegBin = %q, want ffmpeg", cfg.FFmpegBin)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/videogen")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEGMENT_SECONDS", "4")
	t.Setenv("SCENE_PARALLELISM", "8")
	t.Setenv("ARTIFACT_USE_SSL", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SegmentSeconds != 4 {
		t.Fatalf("SegmentSeconds = %v, want 4", cfg.SegmentSeconds)
	}
	if cfg.SceneParallelism != 8 {
		t.Fatalf("SceneParallelism = %d, want 8", cfg.SceneParallelism)
	}
	if !cfg.ArtifactUseSSL {
		t.Fatal("ArtifactUseSSL = false, want true")
	}
}

func TestLoadConfigRejectsNonPositiveSegmentLength(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/videogen")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEGMENT_SECONDS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero segment length")
	}
}
