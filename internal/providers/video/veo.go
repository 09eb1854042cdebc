// Package video generates short clips through Google's Veo models on the
// Gemini API surface.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"genesis/internal/domain"
)

const (
	// ProviderID is the model id clients use to request video generation.
	ProviderID = "veo2"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "veo-2.0-generate-001"
	defaultTimeout = 120 * time.Second

	// mockVideoURL is the fixed artifact returned in test mode.
	mockVideoURL = "https://placehold.co/600x400/mp4?text=AI+Generated+Video"
)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type Client struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	testMode bool
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
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
		model:    model,
		baseURL:  baseURL,
		client:   client,
		testMode: key == "TEST_MODE",
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{ID: ProviderID, Vendor: "Google", Kind: domain.KindVideo}
}

type veoRequest struct {
	Contents []veoContent `json:"contents"`
}

type veoContent struct {
	Role  string    `json:"role"`
	Parts []veoPart `json:"parts"`
}

type veoPart struct {
	Text     string       `json:"text,omitempty"`
	FileData *veoFileData `json:"fileData,omitempty"`
}

type veoFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type veoResponse struct {
	Candidates []struct {
		Content veoContent `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if c.testMode || req.TestMode {
		return &domain.GenerationResult{
			Output:   mockVideoURL,
			Kind:     domain.KindVideo,
			Provider: ProviderID,
			Status:   domain.StatusCompleted,
		}, nil
	}
	if !c.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "Google API key is not configured")
	}

	payload := veoRequest{
		Contents: []veoContent{{
			Role:  "user",
			Parts: []veoPart{{Text: req.Prompt()}},
		}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "veo: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var out veoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "veo: response is not JSON: %v", err)
	}
	uri := extractFileURI(out)
	if uri == "" {
		return nil, domain.E(domain.KindMalformedResponse, "veo: response carries no video file uri")
	}
	return &domain.GenerationResult{
		Output:   uri,
		Kind:     domain.KindVideo,
		Provider: ProviderID,
		Status:   domain.StatusCompleted,
	}, nil
}

func extractFileURI(resp veoResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.FileData != nil && part.FileData.FileURI != "" {
				return part.FileData.FileURI
			}
		}
	}
	return ""
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
