// Package pipeline drives the end-to-end generation of an explainer video:
// semantic cache lookup, script generation, per-scene rendering, clip
// assembly, stitching, stream packaging, and artifact upload.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"videogen/internal/cache"
	"videogen/internal/domain"
	"videogen/internal/infra"
	"videogen/internal/providers/openai"
	"videogen/internal/storage"
	"videogen/internal/workdir"
)

// Embedder produces the vector for a topic.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ScriptGenerator produces the ordered scene script for a request.
type ScriptGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.SceneScript, error)
}

// VisualRenderer captures a scene's visual spec as a still image.
type VisualRenderer interface {
	Capture(ctx context.Context, spec domain.VisualSpec, htmlPath, imagePath string) error
}

// NarrationSynthesizer converts narration text into audio bytes.
type NarrationSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// SceneAssembler combines a scene's image and audio into a timed clip.
type SceneAssembler interface {
	Assemble(ctx context.Context, imagePath, audioPath, clipPath string) (float64, error)
}

// ClipStitcher concatenates ordered clips into one continuous video.
type ClipStitcher interface {
	Stitch(ctx context.Context, clipPaths []string, outPath string) error
}

// StreamPackager transcodes the continuous video into a streaming package.
type StreamPackager interface {
	Package(ctx context.Context, finalPath, outDir string) (*domain.StreamingPackage, error)
}

// DurationProber reports a media file's duration.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Judge decides whether a cache candidate answers the topic.
type Judge interface {
	Validate(ctx context.Context, topic string, candidate domain.CacheCandidate) (cache.Verdict, error)
}

// Options wires the orchestrator's collaborators. Every provider is an
// explicitly constructed, injected client; the orchestrator holds no global
// state.
type Options struct {
	Embedder  Embedder
	Index     cache.SimilarityIndex
	Judge     Judge
	Scripts   ScriptGenerator
	Visuals   VisualRenderer
	Speech    NarrationSynthesizer
	Assembler SceneAssembler
	Stitcher  ClipStitcher
	Packager  StreamPackager
	Prober    DurationProber
	Store     storage.ArtifactStore
	Workdirs  *workdir.Manager
	Logger    *infra.Logger

	Bucket           string
	TopK             int
	SceneParallelism int
	DefaultVoice     string
}

// Result is the outcome of one generation call.
type Result struct {
	JobID    string
	Artifact domain.ArtifactRef
	Cached   bool
}

// Orchestrator owns the working directory and all paths inside it for the
// duration of one job. No artifact is shared across concurrent jobs.
type Orchestrator struct {
	opts   Options
	logger *infra.Logger
}

// NewOrchestrator validates the wiring and returns an orchestrator.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Embedder == nil, opts.Index == nil, opts.Judge == nil,
		opts.Scripts == nil, opts.Visuals == nil, opts.Speech == nil,
		opts.Assembler == nil, opts.Stitcher == nil, opts.Packager == nil,
		opts.Prober == nil, opts.Store == nil, opts.Workdirs == nil:
		return nil, fmt.Errorf("pipeline: all collaborators must be wired")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("pipeline: bucket is required")
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.SceneParallelism <= 0 {
		opts.SceneParallelism = 3
	}
	if opts.DefaultVoice == "" {
		opts.DefaultVoice = "alloy"
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Orchestrator{opts: opts, logger: logger}, nil
}

// Generate returns the artifact reference for the topic, serving a validated
// cache hit when one exists and synthesizing the video end-to-end otherwise.
func (o *Orchestrator) Generate(ctx context.Context, topic string, renderOpts domain.RenderOptions) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, o.fail("request", domain.ClassValidation, fmt.Errorf("topic is empty"))
	}

	req := domain.GenerationRequest{
		JobID:   uuid.NewString(),
		Topic:   topic,
		Options: renderOpts,
	}
	req.Options.Language = normalizeLanguage(req.Options.Language)

	logger := o.logger.With().Str("job_id", req.JobID).Logger()
	logger.Info().Str("topic", topic).Msg("pipeline: job started")

	vector := o.embedTopic(ctx, &logger, topic)

	if ref, ok := o.lookupCache(ctx, &logger, topic, vector); ok {
		return &Result{JobID: req.JobID, Artifact: ref, Cached: true}, nil
	}

	dir, err := o.opts.Workdirs.Acquire(req.JobID)
	if err != nil {
		return nil, o.fail("workdir", domain.ClassResource, err)
	}
	// The scratch area never outlives the job, success or failure.
	defer func() {
		if cerr := dir.Cleanup(); cerr != nil {
			logger.Error().Err(cerr).Msg("pipeline: workdir cleanup failed")
		}
	}()

	res, err := o.generateFresh(ctx, &logger, req, dir)
	if err != nil {
		return nil, err
	}

	o.recordCache(ctx, &logger, req, vector, res)

	logger.Info().Str("url", res.Artifact.URL).Msg("pipeline: job finished")
	return res, nil
}

func (o *Orchestrator) generateFresh(ctx context.Context, logger *infra.Logger, req domain.GenerationRequest, dir *workdir.Dir) (*Result, error) {
	script, err := o.opts.Scripts.Generate(ctx, req)
	if err != nil {
		return nil, o.fail("script", classifyScript(err), err)
	}
	logger.Info().Int("scenes", len(script.Scenes)).Msg("pipeline: script ready")

	if err := dir.AllocateScenes(len(script.Scenes)); err != nil {
		return nil, o.fail("workdir", domain.ClassResource, err)
	}

	rendered, clips, err := o.renderScenes(ctx, logger, req, dir, script)
	if err != nil {
		return nil, o.fail("scenes", classifyScene(err), err)
	}

	finalPath := dir.Path("final.mp4")
	if err := o.opts.Stitcher.Stitch(ctx, clips, finalPath); err != nil {
		return nil, o.fail("stitch", classifyStitch(err), err)
	}
	o.checkStitchedDuration(ctx, logger, finalPath, rendered)

	pkg, err := o.opts.Packager.Package(ctx, finalPath, dir.Path("hls"))
	if err != nil {
		return nil, o.fail("package", domain.ClassEncoding, err)
	}

	ref, err := o.uploadPackage(ctx, req.JobID, pkg)
	if err != nil {
		return nil, o.fail("upload", domain.ClassProvider, err)
	}

	return &Result{JobID: req.JobID, Artifact: ref}, nil
}

// renderScenes fans the scenes out with bounded parallelism. Each scene's
// visual capture and narration synthesis run concurrently; assembly follows
// once both artifacts exist. Results are joined back in script order.
func (o *Orchestrator) renderScenes(ctx context.Context, logger *infra.Logger, req domain.GenerationRequest, dir *workdir.Dir, script *domain.SceneScript) ([]domain.RenderedScene, []string, error) {
	voice := req.Options.Voice
	if voice == "" {
		voice = o.opts.DefaultVoice
	}

	rendered := make([]domain.RenderedScene, len(script.Scenes))
	clips := make([]string, len(script.Scenes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.SceneParallelism)

	for i, scene := range script.Scenes {
		g.Go(func() error {
			htmlPath := dir.ScenePath(i, "scene.html")
			imagePath := dir.ScenePath(i, "scene.png")
			audioPath := dir.ScenePath(i, "narration.mp3")
			clipPath := dir.ScenePath(i, "clip.mp4")

			sg, sctx := errgroup.WithContext(gctx)
			sg.Go(func() error {
				return o.opts.Visuals.Capture(sctx, scene.Visual, htmlPath, imagePath)
			})
			sg.Go(func() error {
				audio, err := o.opts.Speech.Synthesize(sctx, scene.NarrationText, voice)
				if err != nil {
					return fmt.Errorf("%w: scene %d: %v", domain.ErrSynthesisFailed, i, err)
				}
				if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
					return fmt.Errorf("%w: scene %d: write audio: %v", domain.ErrSynthesisFailed, i, err)
				}
				return nil
			})
			if err := sg.Wait(); err != nil {
				return err
			}

			duration, err := o.opts.Assembler.Assemble(gctx, imagePath, audioPath, clipPath)
			if err != nil {
				return err
			}

			rendered[i] = domain.RenderedScene{
				Index:           i,
				ImagePath:       imagePath,
				AudioPath:       audioPath,
				DurationSeconds: duration,
			}
			clips[i] = clipPath

			logger.Debug().Int("scene", i).Float64("duration", duration).Msg("pipeline: scene assembled")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rendered, clips, nil
}

// checkStitchedDuration compares the stitched video against the sum of scene
// durations. Drift beyond one rounding unit is logged, not fatal.
func (o *Orchestrator) checkStitchedDuration(ctx context.Context, logger *infra.Logger, finalPath string, rendered []domain.RenderedScene) {
	var want float64
	for _, r := range rendered {
		want += r.DurationSeconds
	}

	got, err := o.opts.Prober.Probe(ctx, finalPath)
	if err != nil {
		logger.Warn().Err(err).Msg("pipeline: could not probe stitched video")
		return
	}
	if math.Abs(got-want) > 1.0 {
		logger.Warn().
			Float64("stitched", got).
			Float64("sum_of_scenes", want).
			Msg("pipeline: stitched duration drifted from scene total")
	}
}

func (o *Orchestrator) uploadPackage(ctx context.Context, jobID string, pkg *domain.StreamingPackage) (domain.ArtifactRef, error) {
	prefix := "videos/" + jobID
	playlistKey := prefix + "/playlist.m3u8"

	if err := o.opts.Store.PutFile(ctx, o.opts.Bucket, playlistKey, pkg.PlaylistPath, "application/vnd.apple.mpegurl"); err != nil {
		return domain.ArtifactRef{}, err
	}
	for _, seg := range pkg.SegmentPaths {
		key := prefix + "/" + baseName(seg)
		if err := o.opts.Store.PutFile(ctx, o.opts.Bucket, key, seg, "video/mp2t"); err != nil {
			return domain.ArtifactRef{}, err
		}
	}

	url, err := o.opts.Store.ObjectURL(ctx, o.opts.Bucket, playlistKey)
	if err != nil {
		return domain.ArtifactRef{}, err
	}
	return domain.ArtifactRef{Bucket: o.opts.Bucket, Key: playlistKey, URL: url}, nil
}

// embedTopic returns nil when the embedding provider is unavailable; the
// lookup then degrades to a cache miss instead of failing the request.
func (o *Orchestrator) embedTopic(ctx context.Context, logger *infra.Logger, topic string) []float32 {
	vector, err := o.opts.Embedder.Embed(ctx, topic)
	if err != nil {
		logger.Warn().Err(err).Msg("pipeline: embedding unavailable, treating as cache miss")
		return nil
	}
	return vector
}

func (o *Orchestrator) lookupCache(ctx context.Context, logger *infra.Logger, topic string, vector []float32) (domain.ArtifactRef, bool) {
	if vector == nil {
		return domain.ArtifactRef{}, false
	}

	candidates, err := o.opts.Index.Query(ctx, vector, o.opts.TopK)
	if err != nil {
		logger.Warn().Err(err).Msg("pipeline: index unavailable, treating as cache miss")
		return domain.ArtifactRef{}, false
	}
	if len(candidates) == 0 {
		return domain.ArtifactRef{}, false
	}

	top := candidates[0]
	verdict, err := o.opts.Judge.Validate(ctx, topic, top)
	if err != nil {
		logger.Warn().Err(err).Msg("pipeline: judge unavailable, treating as cache miss")
		return domain.ArtifactRef{}, false
	}

	// The judge call is authoritative; the similarity score alone is never
	// trusted. Both the decision and its justification go to the audit log.
	logger.Info().
		Bool("is_valid", verdict.IsValid).
		Str("reason", verdict.Reason).
		Float64("score", top.Score).
		Str("candidate", top.Artifact.Key).
		Msg("pipeline: cache judge decision")

	if !verdict.IsValid {
		return domain.ArtifactRef{}, false
	}
	return top.Artifact, true
}

// recordCache inserts the cache record for a completed job. Cache write
// failures never fail the request that already produced its artifact.
func (o *Orchestrator) recordCache(ctx context.Context, logger *infra.Logger, req domain.GenerationRequest, vector []float32, res *Result) {
	if vector == nil {
		var err error
		vector, err = o.opts.Embedder.Embed(ctx, req.Topic)
		if err != nil {
			logger.Warn().Err(err).Msg("pipeline: skipping cache record, embedding unavailable")
			return
		}
	}

	caser := cases.Title(language.Make(req.Options.Language))
	rec := domain.CacheRecord{
		ID:        req.JobID,
		Topic:     req.Topic,
		Embedding: vector,
		Artifact:  res.Artifact,
		Metadata: map[string]string{
			"title":    caser.String(req.Topic),
			"language": req.Options.Language,
			"style":    req.Options.Style,
		},
	}
	if err := o.opts.Index.Upsert(ctx, rec); err != nil {
		logger.Warn().Err(err).Msg("pipeline: cache record insert failed")
	}
}

func (o *Orchestrator) fail(stage string, class domain.ErrorClass, err error) error {
	serr := domain.NewStageError(stage, class, err)
	o.logger.Error().
		Str("stage", stage).
		Str("class", string(class)).
		Err(err).
		Msg("pipeline: stage failed")
	return fmt.Errorf("%w: %w", domain.ErrGenerationFailed, serr)
}

func classifyScript(err error) domain.ErrorClass {
	if errors.Is(err, openai.ErrInvalidResponse) {
		return domain.ClassValidation
	}
	return domain.ClassProvider
}

func classifyScene(err error) domain.ErrorClass {
	if errors.Is(err, domain.ErrAssemblyFailed) {
		return domain.ClassEncoding
	}
	return domain.ClassProvider
}

func classifyStitch(err error) domain.ErrorClass {
	if errors.Is(err, domain.ErrInvalidClipList) {
		return domain.ClassValidation
	}
	return domain.ClassEncoding
}

// normalizeLanguage reduces a free-form hint to a BCP-47 base language,
// defaulting to English.
func normalizeLanguage(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "en"
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
