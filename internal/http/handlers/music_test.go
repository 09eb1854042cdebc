package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"genesis/internal/domain"
	"genesis/internal/domain/genrecfg"
	"genesis/internal/providers/music"
)

type stubTrackSource struct {
	mu        sync.Mutex
	status    *domain.JobStatus
	statusErr error
	task      *music.TaskStatus
	taskErr   error
	calls     int
}

func (s *stubTrackSource) TrackStatus(ctx context.Context, trackID string) (*domain.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.status, nil
}

func (s *stubTrackSource) TaskStatus(ctx context.Context, taskID string) (*music.TaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.taskErr != nil {
		return nil, s.taskErr
	}
	return s.task, nil
}

func musicRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/music/generate", app.MusicGenerate)
	r.Get("/api/music/genres", app.MusicGenres)
	r.Get("/api/music/track/{track_id}", app.MusicTrack)
	r.Get("/api/music/tasks/{task_id}", app.MusicTask)
	return r
}

func TestMusicGenerateValidatesPayload(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		wantCode string
	}{{
		name:     "invalid json",
		body:     `{"topic":`,
		wantCode: "bad_request",
	}, {
		name:     "missing topic",
		body:     `{"genre":"pop"}`,
		wantCode: "invalid_request",
	}, {
		name:     "blank topic",
		body:     `{"topic":"   ","genre":"pop"}`,
		wantCode: "invalid_request",
	}, {
		name:     "missing genre",
		body:     `{"topic":"photosynthesis"}`,
		wantCode: "invalid_request",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			musicStub := &stubGenProvider{
				desc: domain.ProviderDescriptor{ID: "beatoven", Vendor: "Beatoven.ai", Kind: domain.KindMusic},
			}
			app := newStubApp(&stubStatusSource{}, musicStub)

			rr := postJSON(t, app.MusicGenerate, "/api/music/generate", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
			var envelope errorEnvelope
			if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("error code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
			if musicStub.calls != 0 {
				t.Fatalf("provider was called for a rejected request")
			}
		})
	}
}

func TestMusicGenerateAwaitsByDefault(t *testing.T) {
	musicStub := &stubGenProvider{
		desc: domain.ProviderDescriptor{ID: "beatoven", Vendor: "Beatoven.ai", Kind: domain.KindMusic},
		result: &domain.GenerationResult{
			Kind:           domain.KindMusic,
			Provider:       "beatoven",
			JobID:          "abc123",
			TaskID:         "abc123_2",
			Version:        2,
			Status:         domain.StatusProcessing,
			ProviderStatus: "composing",
			PromptUsed:     "Upbeat pop track. Topic: photosynthesis.",
			Title:          "Learning about photosynthesis",
			Lyrics:         "Let me tell you about photosynthesis",
		},
	}
	source := &stubStatusSource{statuses: []*domain.JobStatus{
		{JobID: "abc123", State: domain.JobCompleted, RawState: "COMPLETED", ResultURL: "https://cdn.example.com/track.mp3"},
	}}
	app := newStubApp(source, musicStub)

	rr := postJSON(t, app.MusicGenerate, "/api/music/generate", `{"topic":"photosynthesis","genre":"pop","duration":60}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp musicGenerateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OutputURL != "https://cdn.example.com/track.mp3" {
		t.Fatalf("output_url = %q", resp.OutputURL)
	}
	if resp.Status != "completed" || resp.BeatovenStatus != "COMPLETED" {
		t.Fatalf("status = %q / %q", resp.Status, resp.BeatovenStatus)
	}
	if resp.Genre != "pop" || resp.TrackID != "abc123" || resp.TaskID != "abc123_2" || resp.Version != 2 {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if resp.Title != "Learning about photosynthesis" || resp.Lyrics == "" {
		t.Fatalf("title/lyrics missing: %#v", resp)
	}
	if musicStub.lastReq.LearningTopic != "photosynthesis" || musicStub.lastReq.Model != music.ProviderID {
		t.Fatalf("unexpected provider request: %#v", musicStub.lastReq)
	}
}

func TestMusicGenerateNoWaitReturnsProcessing(t *testing.T) {
	musicStub := &stubGenProvider{
		desc: domain.ProviderDescriptor{ID: "beatoven", Vendor: "Beatoven.ai", Kind: domain.KindMusic},
		result: &domain.GenerationResult{
			Kind:           domain.KindMusic,
			Provider:       "beatoven",
			JobID:          "abc123",
			TaskID:         "abc123_1",
			Status:         domain.StatusProcessing,
			ProviderStatus: "composing",
		},
	}
	source := &stubStatusSource{}
	app := newStubApp(source, musicStub)

	rr := postJSON(t, app.MusicGenerate, "/api/music/generate", `{"topic":"photosynthesis","genre":"pop","wait_for_completion":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}

	var resp musicGenerateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "processing" || resp.TrackID != "abc123" {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if source.callCount() != 0 {
		t.Fatalf("no-wait requests must not poll")
	}
}

func TestMusicGenerateUnknownGenre(t *testing.T) {
	musicStub := &stubGenProvider{
		desc: domain.ProviderDescriptor{ID: "beatoven", Vendor: "Beatoven.ai", Kind: domain.KindMusic},
		err:  domain.Ef(domain.KindUnknownGenre, "unknown genre %q", "polka"),
	}
	app := newStubApp(&stubStatusSource{}, musicStub)

	rr := postJSON(t, app.MusicGenerate, "/api/music/generate", `{"topic":"photosynthesis","genre":"polka"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d; body=%s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}
	var envelope errorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "unknown_genre" {
		t.Fatalf("error code = %q, want unknown_genre", envelope.Error.Code)
	}
}

func TestMusicTrackReady(t *testing.T) {
	tracks := &stubTrackSource{status: &domain.JobStatus{
		JobID:     "abc123",
		State:     domain.JobCompleted,
		RawState:  "COMPLETED",
		ResultURL: "https://cdn.example.com/track.mp3",
		Title:     "Learning about photosynthesis",
		Genre:     "hip-hop",
		CreatedAt: "2025-01-01T00:00:00Z",
		UpdatedAt: "2025-01-01T00:01:30Z",
	}}
	app := newStubApp(&stubStatusSource{})
	app.Tracks = tracks

	req := httptest.NewRequest("GET", "/api/music/track/abc123", nil)
	rr := httptest.NewRecorder()
	musicRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var resp trackResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TrackID != "abc123" || resp.Status != "completed" || resp.BeatovenStatus != "COMPLETED" {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if !resp.IsReady {
		t.Fatalf("is_ready = false for a completed track with a url")
	}
	if resp.PreviewURL != "https://cdn.example.com/track.mp3" {
		t.Fatalf("preview_url = %q", resp.PreviewURL)
	}
	if !strings.Contains(resp.Lyrics, "photosynthesis") {
		t.Fatalf("lyrics were not reconstructed from the title: %q", resp.Lyrics)
	}
	if !strings.Contains(resp.Lyrics, "let me tell you 'bout") {
		t.Fatalf("lyrics should use the hip-hop template, got %q", resp.Lyrics)
	}
	if resp.CreatedAt != "2025-01-01T00:00:00Z" || resp.UpdatedAt != "2025-01-01T00:01:30Z" {
		t.Fatalf("timestamps were not passed through: %#v", resp)
	}
}

func TestMusicTrackInFlight(t *testing.T) {
	tracks := &stubTrackSource{status: &domain.JobStatus{
		JobID:    "abc123",
		State:    domain.JobProcessing,
		RawState: "composing",
		Title:    "My Mixtape Vol. 3",
	}}
	app := newStubApp(&stubStatusSource{})
	app.Tracks = tracks

	req := httptest.NewRequest("GET", "/api/music/track/abc123", nil)
	rr := httptest.NewRecorder()
	musicRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var resp trackResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "processing" || resp.IsReady {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if resp.Lyrics != "" {
		t.Fatalf("lyrics = %q, want none for a foreign title", resp.Lyrics)
	}
}

func TestMusicTrackUpstreamNotFound(t *testing.T) {
	derr := domain.E(domain.KindProviderError, "beatoven answered 404")
	derr.UpstreamStatus = http.StatusNotFound
	tracks := &stubTrackSource{statusErr: derr}
	app := newStubApp(&stubStatusSource{})
	app.Tracks = tracks

	req := httptest.NewRequest("GET", "/api/music/track/no-such-track", nil)
	rr := httptest.NewRecorder()
	musicRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d; body=%s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestMusicTask(t *testing.T) {
	tracks := &stubTrackSource{task: &music.TaskStatus{
		TaskID:    "abc123_1",
		Status:    "composed",
		TrackURL:  "https://cdn.example.com/track.mp3",
		Stems:     map[string]string{"bass": "https://cdn.example.com/bass.mp3", "melody": "https://cdn.example.com/melody.mp3"},
		ProjectID: "proj-1",
		TrackID:   "abc123",
	}}
	app := newStubApp(&stubStatusSource{})
	app.Tracks = tracks

	req := httptest.NewRequest("GET", "/api/music/tasks/abc123_1", nil)
	rr := httptest.NewRecorder()
	musicRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var resp taskResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TaskID != "abc123_1" || resp.Status != "composed" || resp.ProjectID != "proj-1" {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if len(resp.Stems) != 2 || resp.Stems["bass"] == "" {
		t.Fatalf("stems = %#v", resp.Stems)
	}
}

func TestMusicGenresListsTableOrder(t *testing.T) {
	app := newStubApp(&stubStatusSource{})
	app.Genres = genrecfg.Default()

	req := httptest.NewRequest("GET", "/api/music/genres", nil)
	rr := httptest.NewRecorder()
	musicRouter(app).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	if !strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "[") {
		t.Fatalf("genres must serialize as a bare array, got %s", rr.Body.String())
	}
	var options []genreOption
	if err := json.NewDecoder(rr.Body).Decode(&options); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(options) != 8 {
		t.Fatalf("genre count = %d, want 8", len(options))
	}
	if options[0].ID != "pop" || options[7].ID != "folk" {
		t.Fatalf("unexpected order: first=%q last=%q", options[0].ID, options[7].ID)
	}
	for _, opt := range options {
		if opt.Name == "" || opt.Description == "" {
			t.Fatalf("genre %q is missing display fields", opt.ID)
		}
	}
}
