// Package image generates still images through the OpenAI images API.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"genesis/internal/domain"
)

const (
	// ProviderID is the model id clients use to request image generation.
	ProviderID = "gpt-image-1"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultSize    = "1024x1024"
	defaultTimeout = 60 * time.Second

	// mockImageURL is the fixed artifact returned in test mode.
	mockImageURL = "https://placehold.co/600x400?text=AI+Generated+Image"
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
		model = ProviderID
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
	return domain.ProviderDescriptor{ID: ProviderID, Vendor: "OpenAI", Kind: domain.KindImage}
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

func (c *Client) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if c.testMode || req.TestMode {
		return &domain.GenerationResult{
			Output:   mockImageURL,
			Kind:     domain.KindImage,
			Provider: ProviderID,
			Status:   domain.StatusCompleted,
		}, nil
	}
	if !c.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "OpenAI API key is not configured")
	}

	payload := imageRequest{
		Model:  c.model,
		Prompt: req.Prompt(),
		N:      1,
		Size:   defaultSize,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "openai images: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var out imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "openai images: response is not JSON: %v", err)
	}
	if len(out.Data) == 0 {
		return nil, domain.E(domain.KindMalformedResponse, "openai images: response carries no image data")
	}
	output := out.Data[0].URL
	if output == "" {
		if out.Data[0].B64JSON == "" {
			return nil, domain.E(domain.KindMalformedResponse, "openai images: image entry has neither url nor b64_json")
		}
		output = "data:image/png;base64," + out.Data[0].B64JSON
	}
	return &domain.GenerationResult{
		Output:   output,
		Kind:     domain.KindImage,
		Provider: ProviderID,
		Status:   domain.StatusCompleted,
	}, nil
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
