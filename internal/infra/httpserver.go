package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer owns the lifecycle of the API's http.Server.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer builds the API server from config. The write timeout is
// floored above the music poll budget: a generate request legitimately
// stays open for the whole budget before its response body is written,
// and a lower timeout would cut the connection mid-wait.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	writeTimeout := cfg.HTTPWriteTimeout
	if floor := cfg.MusicPollBudget + 15*time.Second; writeTimeout < floor {
		writeTimeout = floor
	}
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests, bounded by ctx.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
