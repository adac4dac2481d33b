package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	ChatModel      string
	EmbeddingModel string
	SpeechModel    string
	SpeechVoice    string

	FFmpegBin  string
	FFprobeBin string

	WorkdirBase    string
	RenderWidth    int
	RenderHeight   int
	RenderTimeout  time.Duration
	VideoBitrate   int
	AudioBitrate   int
	SegmentSeconds float64

	SceneParallelism int
	CacheTopK        int
	ProviderTimeout  time.Duration
	ProviderRetries  int

	// StorageBackend selects "minio" or "file".
	StorageBackend    string
	StoragePath       string
	StorageBaseURL    string
	ArtifactEndpoint  string
	ArtifactAccessKey string
	ArtifactSecretKey string
	ArtifactBucket    string
	ArtifactUseSSL    bool
	ArtifactURLTTL    time.Duration

	AllowedOrigins    []string
	GenerateRateLimit int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		SpeechModel:    getEnv("SPEECH_MODEL", "tts-1"),
		SpeechVoice:    getEnv("SPEECH_VOICE", "alloy"),

		FFmpegBin:  getEnv("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin: getEnv("FFPROBE_BIN", "ffprobe"),

		WorkdirBase:    getEnv("WORKDIR_BASE", os.TempDir()),
		RenderWidth:    getEnvInt("RENDER_WIDTH", 1920),
		RenderHeight:   getEnvInt("RENDER_HEIGHT", 1080),
		RenderTimeout:  time.Second * time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 30)),
		VideoBitrate:   getEnvInt("VIDEO_BITRATE", 2_500_000),
		AudioBitrate:   getEnvInt("AUDIO_BITRATE", 192_000),
		SegmentSeconds: getEnvFloat("SEGMENT_SECONDS", 6),

		SceneParallelism: getEnvInt("SCENE_PARALLELISM", 3),
		CacheTopK:        getEnvInt("CACHE_TOP_K", 3),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		ProviderRetries:  getEnvInt("PROVIDER_RETRIES", 3),

		StorageBackend:    getEnv("STORAGE_BACKEND", "minio"),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		ArtifactEndpoint:  getEnv("ARTIFACT_ENDPOINT", "localhost:9000"),
		ArtifactAccessKey: os.Getenv("ARTIFACT_ACCESS_KEY"),
		ArtifactSecretKey: os.Getenv("ARTIFACT_SECRET_KEY"),
		ArtifactBucket:    getEnv("ARTIFACT_BUCKET", "videos"),
		ArtifactUseSSL:    getEnvBool("ARTIFACT_USE_SSL", false),
		ArtifactURLTTL:    time.Hour * time.Duration(getEnvInt("ARTIFACT_URL_TTL_HOURS", 24)),

		AllowedOrigins:    splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		GenerateRateLimit: getEnvInt("GENERATE_RATE_LIMIT_PER_MINUTE", 10),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.SegmentSeconds <= 0 {
		return nil, fmt.Errorf("SEGMENT_SECONDS must be positive")
	}

	return cfg, nil
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
