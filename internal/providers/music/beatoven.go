// Package music integrates Beatoven.ai track composition. Composition is
// asynchronous: Compose submits a track, TrackStatus and TaskStatus report
// progress until a preview URL exists.
package music

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"genesis/internal/domain"
	"genesis/internal/lyrics"
)

const (
	// ProviderID is the model id clients use to request this provider.
	ProviderID = "beatoven"

	// TestModeKey is the API key sentinel that switches the client to
	// deterministic mock responses with no network I/O.
	TestModeKey = "TEST_MODE"

	defaultBaseURL = "https://api.beatoven.ai/v1"
	defaultTimeout = 30 * time.Second

	// sampleTrackURL is the fixed artifact returned in test mode.
	sampleTrackURL = "https://filesamples.com/samples/audio/mp3/sample3.mp3"

	mockCreatedAt = "2023-05-08T10:00:00Z"
	mockUpdatedAt = "2023-05-08T10:01:00Z"
)

type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the Beatoven API. The zero-key client stays constructible
// so the registry can report the provider as unconfigured per request.
type Client struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	testMode bool
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	key := strings.TrimSpace(opts.APIKey)
	return &Client{
		apiKey:   key,
		baseURL:  base,
		client:   client,
		testMode: key == TestModeKey,
	}
}

// Configured reports whether an API key is present at all.
func (c *Client) Configured() bool { return c.apiKey != "" }

// TestMode reports whether the client mocks every request.
func (c *Client) TestMode() bool { return c.testMode }

// ComposeRequest is a normalized composition order. ProviderGenre is the
// provider's vocabulary (already mapped), Prompt the resolved prompt text.
type ComposeRequest struct {
	Topic         string
	GenreID       string
	ProviderGenre string
	DurationSec   int
	Prompt        string
	TestMode      bool
}

// Track is the provider's view of a submitted composition.
type Track struct {
	ID         string
	TaskID     string
	Name       string
	Status     string // raw provider status, e.g. "composing"
	PreviewURL string
	Version    int
}

type composePayload struct {
	Name         string `json:"name"`
	Duration     int    `json:"duration"`
	Genre        string `json:"genre"`
	CustomPrompt string `json:"customPrompt,omitempty"`
}

type trackPayload struct {
	ID                string `json:"id"`
	TaskID            string `json:"task_id"`
	TaskIDAlt         string `json:"taskId"`
	CompositionTaskID string `json:"compositionTaskId"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	Genre             string `json:"genre"`
	PreviewURL        string `json:"previewUrl"`
	Version           int    `json:"version"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// Compose submits a track composition and returns the pending track. A
// response carrying neither a track id nor an artifact URL is a contract
// violation and fails malformed_provider_response; ids are never invented.
func (c *Client) Compose(ctx context.Context, req ComposeRequest) (*Track, error) {
	if c.testMode || req.TestMode {
		return c.mockCompose(req), nil
	}
	if !c.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "Beatoven API key is not configured")
	}

	payload := composePayload{
		Name:         lyrics.Title(req.Topic),
		Duration:     req.DurationSec,
		Genre:        req.ProviderGenre,
		CustomPrompt: req.Prompt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tracks", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "beatoven: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var p trackPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "beatoven: compose response is not JSON: %v", err)
	}
	track := &Track{
		ID:         p.ID,
		TaskID:     taskIDFrom(p),
		Name:       p.Name,
		Status:     p.Status,
		PreviewURL: p.PreviewURL,
		Version:    p.Version,
	}
	if track.Version == 0 {
		track.Version = 1
	}
	if track.ID == "" && track.PreviewURL == "" {
		return nil, domain.E(domain.KindMalformedResponse, "beatoven: compose response has neither track id nor artifact url")
	}
	return track, nil
}

// TrackStatus fetches one status observation for a track. Test-prefixed ids
// never exist upstream, so they always answer from the mock.
func (c *Client) TrackStatus(ctx context.Context, trackID string) (*domain.JobStatus, error) {
	if isTestTrackID(trackID) {
		return &domain.JobStatus{
			JobID:     trackID,
			State:     domain.JobCompleted,
			RawState:  "COMPLETED",
			ResultURL: sampleTrackURL,
			Title:     lyrics.Title("test topic"),
			Genre:     genreFromTestID(trackID),
			CreatedAt: mockCreatedAt,
			UpdatedAt: mockUpdatedAt,
		}, nil
	}
	if !c.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "Beatoven API key is not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tracks/"+trackID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "beatoven: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var p trackPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "beatoven: track response is not JSON: %v", err)
	}
	state, err := normalizeState(p.Status)
	if err != nil {
		return nil, err
	}
	return &domain.JobStatus{
		JobID:     trackID,
		State:     state,
		RawState:  p.Status,
		ResultURL: p.PreviewURL,
		Title:     p.Name,
		Genre:     p.Genre,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

// TaskStatus reports a composition task, including stem URLs once composed.
type TaskStatus struct {
	TaskID    string
	Status    string
	TrackURL  string
	Stems     map[string]string
	ProjectID string
	TrackID   string
}

type taskPayload struct {
	Status string `json:"status"`
	Meta   struct {
		ProjectID string            `json:"project_id"`
		TrackID   string            `json:"track_id"`
		TrackURL  string            `json:"track_url"`
		StemsURL  map[string]string `json:"stems_url"`
	} `json:"meta"`
}

func (c *Client) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	if isTestTaskID(taskID) {
		seed := shortHash(taskID)
		return &TaskStatus{
			TaskID:   taskID,
			Status:   "composed",
			TrackURL: sampleTrackURL,
			Stems: map[string]string{
				"bass":       "https://filesamples.com/samples/audio/mp3/sample1.mp3",
				"chords":     "https://filesamples.com/samples/audio/mp3/sample2.mp3",
				"melody":     "https://filesamples.com/samples/audio/mp3/sample3.mp3",
				"percussion": "https://filesamples.com/samples/audio/mp3/sample4.mp3",
			},
			ProjectID: "mock-project-" + seed,
			TrackID:   "mock-track-" + seed,
		}, nil
	}
	if !c.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "Beatoven API key is not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "beatoven: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var p taskPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "beatoven: task response is not JSON: %v", err)
	}
	return &TaskStatus{
		TaskID:    taskID,
		Status:    p.Status,
		TrackURL:  p.Meta.TrackURL,
		Stems:     p.Meta.StemsURL,
		ProjectID: p.Meta.ProjectID,
		TrackID:   p.Meta.TrackID,
	}, nil
}

func (c *Client) mockCompose(req ComposeRequest) *Track {
	seed := shortHash(req.Topic + "|" + req.GenreID)
	return &Track{
		ID:         fmt.Sprintf("test-track-%s-%s", req.GenreID, seed),
		TaskID:     fmt.Sprintf("test-task-%s-%s", req.GenreID, seed),
		Name:       lyrics.Title(req.Topic),
		Status:     "composing",
		PreviewURL: sampleTrackURL,
		Version:    1,
	}
}

// taskIDFrom picks the task id out of a compose response. The API has
// shipped it under several names; when absent entirely, Beatoven task ids
// are the track id with a version suffix.
func taskIDFrom(p trackPayload) string {
	for _, id := range []string{p.TaskID, p.TaskIDAlt, p.CompositionTaskID} {
		if id != "" {
			return id
		}
	}
	if p.ID == "" {
		return ""
	}
	if strings.Contains(p.ID, "_") {
		return p.ID
	}
	return p.ID + "_1"
}

func normalizeState(raw string) (domain.JobState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued", "pending", "created":
		return domain.JobPending, nil
	case "composing", "running", "processing", "in_progress":
		return domain.JobProcessing, nil
	case "completed", "composed":
		return domain.JobCompleted, nil
	case "failed":
		return domain.JobFailed, nil
	case "error":
		return domain.JobError, nil
	}
	return "", domain.Ef(domain.KindMalformedResponse, "beatoven: unknown track status %q", raw)
}

func isTestTrackID(id string) bool {
	return strings.HasPrefix(id, "test-track-") || strings.HasPrefix(id, "fallback-track-")
}

// genreFromTestID recovers the genre segment of a mock track id shaped as
// test-track-<genre>-<seed>.
func genreFromTestID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) < 4 {
		return ""
	}
	return strings.Join(parts[2:len(parts)-1], "-")
}

func isTestTaskID(id string) bool {
	return strings.HasPrefix(id, "test-task-") || strings.HasPrefix(id, "fallback-task-")
}

func shortHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
