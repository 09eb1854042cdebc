// Package httpapi assembles the chi router and middleware chain.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"genesis/internal/http/handlers"
	"genesis/internal/infra"
	"genesis/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(log),
		middleware.CORS(strings.Split(cfg.AllowedOrigins, ",")),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/api/health", app.Health)
	r.Get("/api/models", app.Models)
	r.Post("/api/generate", app.Generate)

	r.Route("/api/music", func(r chi.Router) {
		r.Post("/generate", app.MusicGenerate)
		r.Get("/genres", app.MusicGenres)
		r.Get("/track/{track_id}", app.MusicTrack)
		r.Get("/tasks/{task_id}", app.MusicTask)
	})

	r.Get("/openapi.json", app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)

	return r
}
