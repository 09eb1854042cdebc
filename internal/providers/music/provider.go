package music

import (
	"context"
	"strings"

	"genesis/internal/domain"
	"genesis/internal/lyrics"
	"genesis/internal/providers/prompt"
)

const defaultDurationSec = 60

// Provider adapts the Beatoven client to the dispatcher contract: it
// resolves the genre prompt, submits the composition and reports the
// pending track. Polling to completion belongs to the caller.
type Provider struct {
	client      *Client
	resolver    *prompt.Resolver
	durationSec int
}

func NewProvider(client *Client, resolver *prompt.Resolver, durationSec int) *Provider {
	if durationSec <= 0 {
		durationSec = defaultDurationSec
	}
	return &Provider{client: client, resolver: resolver, durationSec: durationSec}
}

// Client exposes the underlying Beatoven client for status lookups.
func (p *Provider) Client() *Client { return p.client }

func (p *Provider) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{ID: ProviderID, Vendor: "Beatoven.ai", Kind: domain.KindMusic}
}

func (p *Provider) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	topic := req.Topic()
	res, err := p.resolver.Resolve(req.Genre, topic, req.CustomPrompt)
	if err != nil {
		return nil, err
	}
	duration := req.DurationSec
	if duration <= 0 {
		duration = p.durationSec
	}
	track, err := p.client.Compose(ctx, ComposeRequest{
		Topic:         topic,
		GenreID:       res.GenreID,
		ProviderGenre: res.ProviderGenre,
		DurationSec:   duration,
		Prompt:        res.Prompt,
		TestMode:      req.TestMode,
	})
	if err != nil {
		return nil, err
	}
	result := &domain.GenerationResult{
		Output:         track.PreviewURL,
		Kind:           domain.KindMusic,
		Provider:       ProviderID,
		PromptUsed:     res.Prompt,
		JobID:          track.ID,
		TaskID:         track.TaskID,
		Status:         domain.StatusProcessing,
		ProviderStatus: track.Status,
		Title:          lyrics.Title(topic),
		Lyrics:         lyrics.ForTopic(topic, res.GenreID),
		Version:        track.Version,
	}
	// No polling when the finished preview arrived inline; the mock path
	// always answers that way, live compositions rarely do.
	if track.ID == "" || strings.HasSuffix(track.PreviewURL, ".mp3") {
		result.Status = domain.StatusCompleted
	}
	return result, nil
}
