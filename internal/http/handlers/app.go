// Package handlers carries the HTTP endpoints. Every handler hangs off App
// and replies through the json/error helpers so responses stay uniform.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"genesis/internal/dispatch"
	"genesis/internal/domain"
	"genesis/internal/domain/genrecfg"
	"genesis/internal/providers/music"
)

// TrackSource answers music status lookups for the track and task
// endpoints. The Beatoven client implements it.
type TrackSource interface {
	TrackStatus(ctx context.Context, trackID string) (*domain.JobStatus, error)
	TaskStatus(ctx context.Context, taskID string) (*music.TaskStatus, error)
}

type App struct {
	Dispatcher *dispatch.Dispatcher
	Poller     *dispatch.Poller
	Tracks     TrackSource
	Genres     *genrecfg.Table
	Log        zerolog.Logger
}

type AppOptions struct {
	Dispatcher *dispatch.Dispatcher
	Poller     *dispatch.Poller
	Tracks     TrackSource
	Genres     *genrecfg.Table
	Logger     zerolog.Logger
}

func NewApp(opts AppOptions) *App {
	return &App{
		Dispatcher: opts.Dispatcher,
		Poller:     opts.Poller,
		Tracks:     opts.Tracks,
		Genres:     opts.Genres,
		Log:        opts.Logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{
			"code":    errCode,
			"message": message,
		},
	})
}

// fail maps a generation error onto the HTTP error envelope.
func (a *App) fail(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		a.Log.Error().Err(err).Msg("unclassified failure")
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
		return
	}
	a.error(w, statusFor(derr), string(derr.Kind), derr.Detail)
}

func statusFor(err *domain.Error) int {
	switch err.Kind {
	case domain.KindInvalidRequest, domain.KindUnknownProvider:
		return http.StatusBadRequest
	case domain.KindUnknownGenre:
		return http.StatusUnprocessableEntity
	case domain.KindProviderUnavail:
		return http.StatusServiceUnavailable
	case domain.KindProviderError:
		// A 404 on a status lookup means the id does not exist upstream.
		if err.UpstreamStatus == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case domain.KindMalformedResponse, domain.KindGenerationFailed:
		return http.StatusBadGateway
	case domain.KindGenerationTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
