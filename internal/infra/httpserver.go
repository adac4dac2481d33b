package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server for the generation API. A generation request
// holds its connection open for the whole pipeline run, so the write timeout
// must cover the slowest acceptable job rather than a CRUD-style few seconds;
// it comes from configuration for that reason.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer builds the server from config. The header read timeout stays
// short regardless of the generous write timeout: slow clients are rejected
// early, slow jobs are not.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr reports the listen address.
func (s *HTTPServer) Addr() string {
	if s.server == nil {
		return ""
	}
	return s.server.Addr
}

// Start serves until Shutdown is called or the listener fails.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight generation requests until ctx expires. Background
// repair uploads are not tied to connections; the caller flushes those
// separately.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
