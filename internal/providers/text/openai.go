package text

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"genesis/internal/domain"
)

const (
	// OpenAIProviderID is the model id clients use to request OpenAI text.
	OpenAIProviderID = "o4-mini"

	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiDefaultTimeout = 30 * time.Second
)

type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type OpenAIClient struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	testMode bool
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = OpenAIProviderID
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = openaiDefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	key := strings.TrimSpace(opts.APIKey)
	return &OpenAIClient{
		apiKey:   key,
		model:    model,
		baseURL:  baseURL,
		client:   client,
		testMode: key == "TEST_MODE",
	}
}

func (o *OpenAIClient) Configured() bool { return o.apiKey != "" }

func (o *OpenAIClient) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{ID: OpenAIProviderID, Vendor: "OpenAI", Kind: domain.KindText}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAIClient) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if o.testMode || req.TestMode {
		return mockTextResult(OpenAIProviderID, req.Prompt()), nil
	}
	if !o.Configured() {
		return nil, domain.E(domain.KindProviderUnavail, "OpenAI API key is not configured")
	}

	payload := chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: req.Prompt()}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindProviderUnavail, Detail: "openai: " + err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(resp.StatusCode, readBody(resp.Body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.Ef(domain.KindMalformedResponse, "openai: response is not JSON: %v", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, domain.E(domain.KindMalformedResponse, "openai: response carries no completion text")
	}
	return &domain.GenerationResult{
		Output:   strings.TrimSpace(out.Choices[0].Message.Content),
		Kind:     domain.KindText,
		Provider: OpenAIProviderID,
		Status:   domain.StatusCompleted,
	}, nil
}
