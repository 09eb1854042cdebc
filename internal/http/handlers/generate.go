package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"genesis/internal/domain"
)

type generateRequest struct {
	Input         string `json:"input"`
	Model         string `json:"model"`
	LearningTopic string `json:"learning_topic"`
	Genre         string `json:"genre"`
	Duration      int    `json:"duration"`
	FileName      string `json:"file_name"`
}

type generateResponse struct {
	Output     string `json:"output"`
	Type       string `json:"type"`
	ModelUsed  string `json:"model_used"`
	Title      string `json:"title,omitempty"`
	Lyrics     string `json:"lyrics,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
	PromptUsed string `json:"prompt_used,omitempty"`
	TrackID    string `json:"track_id,omitempty"`
	TaskID     string `json:"task_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Generate dispatches one generation request. Music jobs are awaited to a
// terminal state before replying; everything else answers in one hop.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	genReq := &domain.GenerationRequest{
		Input:         req.Input,
		LearningTopic: req.LearningTopic,
		Model:         req.Model,
		Genre:         req.Genre,
		DurationSec:   req.Duration,
		FileName:      req.FileName,
		TestMode:      queryBool(r, "test_mode"),
	}
	result, err := a.Dispatcher.Dispatch(r.Context(), genReq)
	if err != nil {
		a.fail(w, err)
		return
	}
	if result.Status == domain.StatusProcessing {
		result, err = a.Poller.Await(r.Context(), result)
		if err != nil {
			a.fail(w, err)
			return
		}
	}
	a.json(w, http.StatusOK, generateResponseFrom(result))
}

func generateResponseFrom(res *domain.GenerationResult) generateResponse {
	return generateResponse{
		Output:     res.Output,
		Type:       string(res.Kind),
		ModelUsed:  res.Provider,
		Title:      res.Title,
		Lyrics:     res.Lyrics,
		PromptUsed: res.PromptUsed,
		TrackID:    res.JobID,
		TaskID:     res.TaskID,
		Status:     string(res.Status),
	}
}

// Models lists the provider catalog in registry order.
func (a *App) Models(w http.ResponseWriter, _ *http.Request) {
	descriptors := a.Dispatcher.Providers()
	models := make([]map[string]string, 0, len(descriptors))
	for _, d := range descriptors {
		models = append(models, map[string]string{
			"id":       d.ID,
			"provider": d.Vendor,
			"type":     string(d.Kind),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"models": models})
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
