// Package httpapi assembles the chi router for the generation service.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"videogen/internal/http/handlers"
	"videogen/internal/infra"
	"videogen/internal/middleware"
)

// Options tunes the router's middlewares.
type Options struct {
	AllowedOrigins []string
	// GenerateLimit caps generation requests per client IP per minute.
	// Zero disables the limiter.
	GenerateLimit int
}

func NewRouter(app *handlers.App, logger *infra.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*logger),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/videos", func(r chi.Router) {
		if opts.GenerateLimit > 0 {
			r.Use(middleware.RateLimit(opts.GenerateLimit, time.Minute))
		}
		r.Post("/", app.GenerateVideo)
	})

	r.Put("/v1/artifacts/*", app.RepairArtifact)

	return r
}
