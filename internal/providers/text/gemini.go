// Package text holds the text-generation providers: Google Gemini and the
// OpenAI chat completions API.
package text

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
	// GeminiProviderID is the model id clients use to request Gemini text.
	GeminiProviderID = "gemini"

	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-2.0-flash"
	geminiDefaultTimeout = 30 * time.Second
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type GeminiClient struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	testMode bool
}

func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = geminiDefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	key := strings.TrimSpace(opts.APIKey)
	return &GeminiClient{
		apiKey:   key,
		model:    model,
		baseURL:  baseURL,
		client:   client,
		testMode: key == "TEST_MODE",
	}
}

func (g *GeminiClient) Configured() bool { return g.apiKey != "" }

func (g *GeminiClient) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{ID: GeminiProviderID, Vendor: "Google", Kind: domain.KindText}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if g.testMode || req.TestMode {
		return mockTextResult(GeminiProviderID, req.Prompt()), nil
	}
	if !g.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "Google API key is not configured")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt()}},
		}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "gemini: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "gemini: response is not JSON: %v", err)
	}
	text := extractGeminiText(out)
	if text == "" {
		return nil, domain.E(domain.KindMalformedResponse, "gemini: response carries no text candidates")
	}
	return &domain.GenerationResult{
		Output:   text,
		Kind:     domain.KindText,
		Provider: GeminiProviderID,
		Status:   domain.StatusCompleted,
	}, nil
}

func extractGeminiText(resp geminiResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) == "" {
				continue
			}
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

func mockTextResult(providerID, input string) *domain.GenerationResult {
	return &domain.GenerationResult{
		Output:   fmt.Sprintf("AI Response via %s: %s", providerID, input),
		Kind:     domain.KindText,
		Provider: providerID,
		Status:   domain.StatusCompleted,
	}
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
