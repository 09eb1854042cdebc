// Package dispatch routes generation requests to provider clients and
// awaits asynchronous jobs until they reach a terminal state.
package dispatch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"genesis/internal/domain"
)

// Provider is one generation backend. Generate performs at most one
// upstream HTTP call and never polls.
type Provider interface {
	Descriptor() domain.ProviderDescriptor
	Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error)
}

// Dispatcher owns the closed provider registry. Registration order is the
// order the catalog endpoint reports and the order auto-routing prefers
// within a kind.
type Dispatcher struct {
	providers map[string]Provider
	ordered   []domain.ProviderDescriptor
	log       zerolog.Logger
}

func NewDispatcher(log zerolog.Logger, providers ...Provider) *Dispatcher {
	d := &Dispatcher{
		providers: make(map[string]Provider, len(providers)),
		log:       log,
	}
	for _, p := range providers {
		desc := p.Descriptor()
		if _, ok := d.providers[desc.ID]; ok {
			continue
		}
		d.providers[desc.ID] = p
		d.ordered = append(d.ordered, desc)
	}
	return d
}

// Providers lists the registered descriptors in registration order.
func (d *Dispatcher) Providers() []domain.ProviderDescriptor {
	out := make([]domain.ProviderDescriptor, len(d.ordered))
	copy(out, d.ordered)
	return out
}

// Dispatch validates the request, selects a provider and invokes it once.
// Selection failures never reach the network.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if strings.TrimSpace(req.Input) == "" && strings.TrimSpace(req.LearningTopic) == "" {
		return nil, domain.E(domain.KindInvalidRequest, "input or learning_topic is required")
	}
	provider, err := d.selectProvider(req)
	if err != nil {
		return nil, err
	}
	desc := provider.Descriptor()
	d.log.Debug().
		Str("provider", desc.ID).
		Str("kind", string(desc.Kind)).
		Bool("test_mode", req.TestMode).
		Msg("dispatching generation")
	result, err := provider.Generate(ctx, req)
	if err != nil {
		d.log.Warn().Err(err).Str("provider", desc.ID).Msg("generation failed")
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) selectProvider(req *domain.GenerationRequest) (Provider, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" || model == domain.ModelAuto {
		kind := autoKind(req)
		if p, ok := d.firstOfKind(kind); ok {
			return p, nil
		}
		return nil, domain.Ef(domain.KindUnknownProvider, "no %s provider registered", kind)
	}
	if p, ok := d.providers[model]; ok {
		return p, nil
	}
	return nil, domain.Ef(domain.KindUnknownProvider, "unknown model %q", model)
}

// autoKind applies the fixed auto-routing precedence: music when a genre
// and duration are present, image when the attachment looks like an image,
// text otherwise. Video is only ever selected explicitly.
func autoKind(req *domain.GenerationRequest) domain.OutputKind {
	switch {
	case req.Genre != "" && req.DurationSec > 0:
		return domain.KindMusic
	case hasImageExtension(req.FileName):
		return domain.KindImage
	}
	return domain.KindText
}

func (d *Dispatcher) firstOfKind(kind domain.OutputKind) (Provider, bool) {
	for _, desc := range d.ordered {
		if desc.Kind == kind {
			return d.providers[desc.ID], true
		}
	}
	return nil, false
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

func hasImageExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	_, ok := imageExtensions[ext]
	return ok
}
