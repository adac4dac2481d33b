package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"videogen/internal/cache"
	"videogen/internal/http/handlers"
	httpapi "videogen/internal/http/httpapi"
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
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
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

	store, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	orch, err := buildOrchestrator(cfg, &logger, pool, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire pipeline")
	}

	repairer := pipeline.NewRepairer(store, &logger)

	app := handlers.NewApp(orch, &logger)
	app.Repair = repairer
	app.Bucket = cfg.ArtifactBucket
	router := httpapi.NewRouter(app, &logger, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		GenerateLimit:  cfg.GenerateRateLimit,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	repairer.Flush()
	logger.Info().Msg("server stopped")
}

func buildOrchestrator(cfg *infra.Config, logger *infra.Logger, pool *pgxpool.Pool, store storage.ArtifactStore) (*pipeline.Orchestrator, error) {
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
