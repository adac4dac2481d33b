// Command videogen generates a single explainer video from the command line
// and prints the resulting stream URL. It shares the API server's
// configuration and pipeline wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"videogen/internal/cache"
	"videogen/internal/domain"
	"videogen/internal/infra"
	"videogen/internal/media"
	"videogen/internal/pipeline"
	"videogen/internal/providers/openai"
	"videogen/internal/providers/render"
	"videogen/internal/script"
	"videogen/internal/storage"
	"videogen/internal/workdir"
)

func main() {
	topic := flag.String("topic", "", "topic to explain (required)")
	lang := flag.String("language", "", "narration language hint, e.g. en or pt-BR")
	style := flag.String("style", "", "visual style, e.g. dark or light")
	voice := flag.String("voice", "", "narration voice override")
	flag.Parse()

	if *topic == "" {
		fmt.Fprintln(os.Stderr, "usage: videogen -topic \"how do solar panels work\" [-language en] [-style dark]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := cache.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure cache schema")
	}

	orch, err := buildOrchestrator(ctx, cfg, &logger, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire pipeline")
	}

	res, err := orch.Generate(ctx, *topic, domain.RenderOptions{
		Language: *lang,
		Style:    *style,
		Voice:    *voice,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("generation failed")
	}

	if res.Cached {
		logger.Info().Msg("served from cache")
	}
	fmt.Println(res.Artifact.URL)
}

func buildOrchestrator(ctx context.Context, cfg *infra.Config, logger *infra.Logger, pool *pgxpool.Pool) (*pipeline.Orchestrator, error) {
	client, err := openai.NewClient(openai.Options{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		SpeechModel:    cfg.SpeechModel,
		Timeout:        cfg.ProviderTimeout,
		Retries:        cfg.ProviderRetries,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	workdirs, err := workdir.NewManager(cfg.WorkdirBase)
	if err != nil {
		return nil, err
	}

	runner := media.NewRunner(cfg.FFmpegBin, cfg.FFprobeBin, logger)
	policy := media.EncodePolicy{
		Width:        cfg.RenderWidth,
		Height:       cfg.RenderHeight,
		VideoBitrate: cfg.VideoBitrate,
		AudioBitrate: cfg.AudioBitrate,
		FrameRate:    30,
	}

	return pipeline.NewOrchestrator(pipeline.Options{
		Embedder: client,
		Index:    cache.NewPgVectorIndex(pool),
		Judge:    cache.NewJudge(client),
		Scripts:  script.NewGenerator(client),
		Visuals: render.NewRenderer(render.Options{
			Width:   cfg.RenderWidth,
			Height:  cfg.RenderHeight,
			Timeout: cfg.RenderTimeout,
			Logger:  logger,
		}),
		Speech:           client,
		Assembler:        media.NewAssembler(runner, policy),
		Stitcher:         media.NewStitcher(runner, policy, true, logger),
		Packager:         media.NewPackager(runner, cfg.SegmentSeconds, logger),
		Prober:           runner,
		Store:            store,
		Workdirs:         workdirs,
		Logger:           logger,
		Bucket:           cfg.ArtifactBucket,
		TopK:             cfg.CacheTopK,
		SceneParallelism: cfg.SceneParallelism,
		DefaultVoice:     cfg.SpeechVoice,
	})
}

func buildStore(ctx context.Context, cfg *infra.Config) (storage.ArtifactStore, error) {
	if cfg.StorageBackend == "file" {
		return storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	}
	s, err := storage.NewMinioStore(cfg.ArtifactEndpoint, cfg.ArtifactAccessKey, cfg.ArtifactSecretKey, cfg.ArtifactUseSSL, cfg.ArtifactURLTTL)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx, cfg.ArtifactBucket); err != nil {
		return nil, err
	}
	return s, nil
}
