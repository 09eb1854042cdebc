package prompt

import (
	"fmt"
	"hash/fnv"
	"strings"

	"genesis/internal/domain"
	"genesis/internal/domain/genrecfg"
)

// Resolver maps a genre id and learning topic onto the prompt handed to the
// music provider. It holds the static genre table it was constructed with
// and nothing else; resolution is pure and deterministic.
type Resolver struct {
	table *genrecfg.Table
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	GenreID       string // canonical table id
	Prompt        string
	ProviderGenre string // provider vocabulary, e.g. "hip-hop" for hip_hop
	Custom        bool   // true when the caller's own prompt was used
}

func NewResolver(table *genrecfg.Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve returns the prompt for a genre and topic. A non-empty custom
// prompt is used verbatim. Otherwise one of the genre's candidates is
// chosen by a topic-seeded hash and the topic is appended in a fixed
// template, so the same topic always resolves to the same prompt. Genres
// missing from the table fail with unknown_genre; there is no default.
func (r *Resolver) Resolve(genre, topic, custom string) (*Resolution, error) {
	g, ok := r.table.Lookup(genre)
	if !ok {
		return nil, domain.Ef(domain.KindUnknownGenre, "unknown genre %q", genre)
	}
	if c := strings.TrimSpace(custom); c != "" {
		return &Resolution{
			GenreID:       g.ID,
			Prompt:        c,
			ProviderGenre: g.ProviderGenre,
			Custom:        true,
		}, nil
	}
	topic = strings.TrimSpace(topic)
	candidate := g.Prompts[promptIndex(topic, len(g.Prompts))]
	candidate = strings.TrimRight(strings.TrimSpace(candidate), ".")
	return &Resolution{
		GenreID:       g.ID,
		Prompt:        fmt.Sprintf("%s. Topic: %s.", candidate, topic),
		ProviderGenre: g.ProviderGenre,
	}, nil
}

func promptIndex(topic string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(topic))))
	return int(h.Sum32() % uint32(n))
}
