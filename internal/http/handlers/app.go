// Package handlers carries the HTTP surface of the generation service.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"videogen/internal/domain"
	"videogen/internal/infra"
	"videogen/internal/pipeline"
)

// Generator is the one operation the HTTP layer needs from the pipeline.
type Generator interface {
	Generate(ctx context.Context, topic string, opts domain.RenderOptions) (*pipeline.Result, error)
}

type App struct {
	Gen Generator
	Log *infra.Logger

	// Repair and Bucket back the best-effort artifact re-save channel.
	Repair *pipeline.Repairer
	Bucket string
}

func NewApp(gen Generator, log *infra.Logger) *App {
	return &App{Gen: gen, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
