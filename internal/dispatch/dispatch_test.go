package dispatch

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"genesis/internal/domain"
)

type stubProvider struct {
	mu      sync.Mutex
	desc    domain.ProviderDescriptor
	result  *domain.GenerationResult
	err     error
	calls   int
	lastReq *domain.GenerationRequest
}

func (s *stubProvider) Descriptor() domain.ProviderDescriptor { return s.desc }

func (s *stubProvider) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &domain.GenerationResult{
		Output:   "ok",
		Kind:     s.desc.Kind,
		Provider: s.desc.ID,
		Status:   domain.StatusCompleted,
	}, nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func catalog() (*stubProvider, *stubProvider, *stubProvider, *stubProvider, *stubProvider) {
	image := &stubProvider{desc: domain.ProviderDescriptor{ID: "gpt-image-1", Vendor: "OpenAI", Kind: domain.KindImage}}
	video := &stubProvider{desc: domain.ProviderDescriptor{ID: "veo2", Vendor: "Google", Kind: domain.KindVideo}}
	gemini := &stubProvider{desc: domain.ProviderDescriptor{ID: "gemini", Vendor: "Google", Kind: domain.KindText}}
	openai := &stubProvider{desc: domain.ProviderDescriptor{ID: "o4-mini", Vendor: "OpenAI", Kind: domain.KindText}}
	music := &stubProvider{desc: domain.ProviderDescriptor{ID: "beatoven", Vendor: "Beatoven.ai", Kind: domain.KindMusic}}
	return image, video, gemini, openai, music
}

func TestDispatchAutoPrecedence(t *testing.T) {
	testCases := []struct {
		name         string
		req          domain.GenerationRequest
		wantProvider string
	}{{
		name:         "genre and duration select music",
		req:          domain.GenerationRequest{LearningTopic: "photosynthesis", Genre: "hip_hop", DurationSec: 60},
		wantProvider: "beatoven",
	}, {
		name:         "music wins over image attachment",
		req:          domain.GenerationRequest{LearningTopic: "photosynthesis", Genre: "pop", DurationSec: 30, FileName: "diagram.png"},
		wantProvider: "beatoven",
	}, {
		name:         "image attachment selects image",
		req:          domain.GenerationRequest{Input: "describe this", FileName: "diagram.png"},
		wantProvider: "gpt-image-1",
	}, {
		name:         "image extension match is case insensitive",
		req:          domain.GenerationRequest{Input: "describe this", FileName: "PHOTO.JPG"},
		wantProvider: "gpt-image-1",
	}, {
		name:         "plain input selects first text provider",
		req:          domain.GenerationRequest{Input: "explain gravity"},
		wantProvider: "gemini",
	}, {
		name:         "genre without duration falls through to text",
		req:          domain.GenerationRequest{Input: "explain gravity", Genre: "pop"},
		wantProvider: "gemini",
	}, {
		name:         "duration without genre falls through to text",
		req:          domain.GenerationRequest{Input: "explain gravity", DurationSec: 60},
		wantProvider: "gemini",
	}, {
		name:         "non-image attachment falls through to text",
		req:          domain.GenerationRequest{Input: "summarize", FileName: "notes.txt"},
		wantProvider: "gemini",
	}, {
		name:         "explicit model bypasses heuristics",
		req:          domain.GenerationRequest{Input: "explain gravity", Model: "o4-mini", Genre: "pop", DurationSec: 60},
		wantProvider: "o4-mini",
	}, {
		name:         "video only selected explicitly",
		req:          domain.GenerationRequest{Input: "sunrise timelapse", Model: "veo2"},
		wantProvider: "veo2",
	}, {
		name:         "auto keyword behaves like empty model",
		req:          domain.GenerationRequest{LearningTopic: "photosynthesis", Model: "auto", Genre: "hip_hop", DurationSec: 60},
		wantProvider: "beatoven",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			image, video, gemini, openai, music := catalog()
			d := NewDispatcher(zerolog.Nop(), image, video, gemini, openai, music)

			req := tc.req
			result, err := d.Dispatch(context.Background(), &req)
			if err != nil {
				t.Fatalf("Dispatch returned error: %v", err)
			}
			if result.Provider != tc.wantProvider {
				t.Fatalf("provider = %q, want %q", result.Provider, tc.wantProvider)
			}
			total := image.callCount() + video.callCount() + gemini.callCount() + openai.callCount() + music.callCount()
			if total != 1 {
				t.Fatalf("total provider calls = %d, want exactly 1", total)
			}
		})
	}
}

func TestDispatchUnknownModelNeverCallsProviders(t *testing.T) {
	image, video, gemini, openai, music := catalog()
	d := NewDispatcher(zerolog.Nop(), image, video, gemini, openai, music)

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{Input: "hello", Model: "dall-e-9"})
	if !domain.IsKind(err, domain.KindUnknownProvider) {
		t.Fatalf("error kind = %q, want %q", domain.KindOf(err), domain.KindUnknownProvider)
	}
	for _, p := range []*stubProvider{image, video, gemini, openai, music} {
		if p.callCount() != 0 {
			t.Fatalf("provider %s was called for an unknown model", p.desc.ID)
		}
	}
}

func TestDispatchRejectsEmptyRequest(t *testing.T) {
	image, video, gemini, openai, music := catalog()
	d := NewDispatcher(zerolog.Nop(), image, video, gemini, openai, music)

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{Input: "   ", LearningTopic: ""})
	if !domain.IsKind(err, domain.KindInvalidRequest) {
		t.Fatalf("error kind = %q, want %q", domain.KindOf(err), domain.KindInvalidRequest)
	}
	if gemini.callCount() != 0 {
		t.Fatalf("validation failures must not reach a provider")
	}
}

func TestDispatchNoProviderForKind(t *testing.T) {
	_, _, gemini, _, _ := catalog()
	d := NewDispatcher(zerolog.Nop(), gemini)

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{LearningTopic: "photosynthesis", Genre: "pop", DurationSec: 60})
	if !domain.IsKind(err, domain.KindUnknownProvider) {
		t.Fatalf("error kind = %q, want %q", domain.KindOf(err), domain.KindUnknownProvider)
	}
}

func TestDispatchPropagatesProviderError(t *testing.T) {
	image, video, gemini, openai, music := catalog()
	gemini.err = domain.Upstream(500, "upstream exploded")
	d := NewDispatcher(zerolog.Nop(), image, video, gemini, openai, music)

	_, err := d.Dispatch(context.Background(), &domain.GenerationRequest{Input: "explain gravity"})
	if !domain.IsKind(err, domain.KindProviderError) {
		t.Fatalf("error kind = %q, want %q", domain.KindOf(err), domain.KindProviderError)
	}
}

func TestProvidersReportsRegistrationOrder(t *testing.T) {
	image, video, gemini, openai, music := catalog()
	d := NewDispatcher(zerolog.Nop(), image, video, gemini, openai, music)

	got := d.Providers()
	wantOrder := []string{"gpt-image-1", "veo2", "gemini", "o4-mini", "beatoven"}
	if len(got) != len(wantOrder) {
		t.Fatalf("descriptor count = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("Providers()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestDispatcherFirstRegistrationWins(t *testing.T) {
	first := &stubProvider{desc: domain.ProviderDescriptor{ID: "gemini", Vendor: "Google", Kind: domain.KindText}}
	second := &stubProvider{desc: domain.ProviderDescriptor{ID: "gemini", Vendor: "Imposter", Kind: domain.KindText}}
	d := NewDispatcher(zerolog.Nop(), first, second)

	if n := len(d.Providers()); n != 1 {
		t.Fatalf("descriptor count = %d, want 1", n)
	}
	if _, err := d.Dispatch(context.Background(), &domain.GenerationRequest{Input: "hi", Model: "gemini"}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if first.callCount() != 1 || second.callCount() != 0 {
		t.Fatalf("duplicate registration routed to the wrong provider: first=%d second=%d", first.callCount(), second.callCount())
	}
}
