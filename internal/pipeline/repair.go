package pipeline

import (
	"context"
	"os"
	"sync"
	"time"

	"videogen/internal/infra"
	"videogen/internal/storage"
)

// Repairer re-uploads artifacts in the background. It covers the case where a
// stored object turned out damaged or missing and a fresh copy exists locally;
// the caller moves on immediately and the upload happens on its own schedule.
type Repairer struct {
	store   storage.ArtifactStore
	logger  *infra.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

// NewRepairer wires a repairer over the given store.
func NewRepairer(store storage.ArtifactStore, logger *infra.Logger) *Repairer {
	return &Repairer{store: store, logger: logger, timeout: time.Minute}
}

// Resave schedules a best-effort upload of the file at path to bucket/key.
// It never blocks and never reports failure to the caller; the outcome is
// only logged.
func (r *Repairer) Resave(bucket, key, path, contentType string) {
	r.schedule(bucket, key, path, contentType, false)
}

// ResaveUpload behaves like Resave but removes the local file once the
// attempt finishes, for callers handing over a temporary copy.
func (r *Repairer) ResaveUpload(bucket, key, path, contentType string) {
	r.schedule(bucket, key, path, contentType, true)
}

func (r *Repairer) schedule(bucket, key, path, contentType string, removeAfter bool) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if removeAfter {
			defer os.Remove(path)
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.PutFile(ctx, bucket, key, path, contentType); err != nil {
			r.logger.Warn().Err(err).
				Str("bucket", bucket).
				Str("key", key).
				Msg("repair: resave failed")
			return
		}
		r.logger.Info().
			Str("bucket", bucket).
			Str("key", key).
			Msg("repair: artifact resaved")
	}()
}

// Flush waits for all scheduled uploads to finish. Used on shutdown.
func (r *Repairer) Flush() {
	r.wg.Wait()
}
