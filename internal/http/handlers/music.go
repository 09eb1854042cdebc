package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"genesis/internal/domain"
	"genesis/internal/lyrics"
	"genesis/internal/providers/music"
)

type musicGenerateRequest struct {
	Topic             string `json:"topic"`
	Genre             string `json:"genre"`
	Duration          int    `json:"duration"`
	CustomPrompt      string `json:"custom_prompt"`
	TestMode          bool   `json:"test_mode"`
	WaitForCompletion *bool  `json:"wait_for_completion"`
}

type musicGenerateResponse struct {
	OutputURL      string `json:"output_url"`
	Genre          string `json:"genre"`
	PromptUsed     string `json:"prompt_used"`
	TrackID        string `json:"track_id,omitempty"`
	TaskID         string `json:"task_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Version        int    `json:"version,omitempty"`
	BeatovenStatus string `json:"beatoven_status,omitempty"`
	Title          string `json:"title,omitempty"`
	Lyrics         string `json:"lyrics,omitempty"`
}

// MusicGenerate submits a composition and, unless wait_for_completion is
// false, holds the request open until the track is terminal.
func (a *App) MusicGenerate(w http.ResponseWriter, r *http.Request) {
	var req musicGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "topic is required")
		return
	}
	if strings.TrimSpace(req.Genre) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "genre is required")
		return
	}
	genReq := &domain.GenerationRequest{
		LearningTopic: req.Topic,
		Model:         music.ProviderID,
		Genre:         req.Genre,
		DurationSec:   req.Duration,
		CustomPrompt:  req.CustomPrompt,
		TestMode:      req.TestMode || queryBool(r, "test_mode"),
	}
	result, err := a.Dispatcher.Dispatch(r.Context(), genReq)
	if err != nil {
		a.fail(w, err)
		return
	}
	wait := req.WaitForCompletion == nil || *req.WaitForCompletion
	if wait && result.Status == domain.StatusProcessing {
		result, err = a.Poller.Await(r.Context(), result)
		if err != nil {
			a.fail(w, err)
			return
		}
	}
	a.json(w, http.StatusOK, musicGenerateResponse{
		OutputURL:      result.Output,
		Genre:          req.Genre,
		PromptUsed:     result.PromptUsed,
		TrackID:        result.JobID,
		TaskID:         result.TaskID,
		Status:         string(result.Status),
		Version:        result.Version,
		BeatovenStatus: result.ProviderStatus,
		Title:          result.Title,
		Lyrics:         result.Lyrics,
	})
}

type trackResponse struct {
	TrackID        string `json:"track_id"`
	Status         string `json:"status"`
	BeatovenStatus string `json:"beatoven_status"`
	PreviewURL     string `json:"preview_url,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	Title          string `json:"title,omitempty"`
	Lyrics         string `json:"lyrics,omitempty"`
	IsReady        bool   `json:"is_ready"`
}

// MusicTrack answers one status observation for a track, without polling.
func (a *App) MusicTrack(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "track_id")
	if trackID == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "track_id required")
		return
	}
	status, err := a.Tracks.TrackStatus(r.Context(), trackID)
	if err != nil {
		a.fail(w, err)
		return
	}
	resp := trackResponse{
		TrackID:        trackID,
		Status:         string(status.State),
		BeatovenStatus: status.RawState,
		PreviewURL:     status.ResultURL,
		CreatedAt:      status.CreatedAt,
		UpdatedAt:      status.UpdatedAt,
		Title:          status.Title,
		IsReady:        status.State == domain.JobCompleted && status.ResultURL != "",
	}
	if topic, ok := lyrics.TopicFromTitle(status.Title); ok {
		resp.Lyrics = lyrics.ForTopic(topic, status.Genre)
	}
	a.json(w, http.StatusOK, resp)
}

type taskResponse struct {
	TaskID    string            `json:"task_id"`
	Status    string            `json:"status"`
	TrackURL  string            `json:"track_url,omitempty"`
	Stems     map[string]string `json:"stems,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	TrackID   string            `json:"track_id,omitempty"`
}

// MusicTask reports a composition task, including stem URLs once composed.
func (a *App) MusicTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "task_id required")
		return
	}
	task, err := a.Tracks.TaskStatus(r.Context(), taskID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, taskResponse{
		TaskID:    task.TaskID,
		Status:    task.Status,
		TrackURL:  task.TrackURL,
		Stems:     task.Stems,
		ProjectID: task.ProjectID,
		TrackID:   task.TrackID,
	})
}

type genreOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MusicGenres lists the configured genres in table order.
func (a *App) MusicGenres(w http.ResponseWriter, _ *http.Request) {
	genres := a.Genres.Genres()
	options := make([]genreOption, 0, len(genres))
	for _, g := range genres {
		options = append(options, genreOption{ID: g.ID, Name: g.Name, Description: g.Description})
	}
	a.json(w, http.StatusOK, options)
}
