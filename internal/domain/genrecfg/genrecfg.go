package genrecfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Genre is one entry of the static genre table: the catalog row shown to
// clients plus the prompt candidates and provider vocabulary used when
// composing music for it.
type Genre struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	ProviderGenre string   `yaml:"provider_genre" json:"-"`
	Prompts       []string `yaml:"prompts" json:"-"`
}

// Table is the immutable genre configuration. It is built once at process
// start (defaults or a YAML file) and passed explicitly to whoever needs
// it; there is no package-level mutable state.
type Table struct {
	genres []Genre
	index  map[string]int
}

type tableFile struct {
	Genres []Genre `yaml:"genres"`
}

// New builds a validated table from an ordered genre list.
func New(genres []Genre) (*Table, error) {
	if len(genres) == 0 {
		return nil, fmt.Errorf("genre table is empty")
	}
	index := make(map[string]int, len(genres))
	for i, g := range genres {
		id := strings.ToLower(strings.TrimSpace(g.ID))
		if id == "" {
			return nil, fmt.Errorf("genre %d: id is required", i)
		}
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("genre %q: duplicate id", id)
		}
		if strings.TrimSpace(g.Name) == "" {
			return nil, fmt.Errorf("genre %q: name is required", id)
		}
		if strings.TrimSpace(g.ProviderGenre) == "" {
			return nil, fmt.Errorf("genre %q: provider_genre is required", id)
		}
		if len(g.Prompts) == 0 {
			return nil, fmt.Errorf("genre %q: at least one prompt is required", id)
		}
		for j, p := range g.Prompts {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("genre %q: prompt %d is empty", id, j)
			}
		}
		index[id] = i
	}
	return &Table{genres: genres, index: index}, nil
}

// Load reads a full replacement table from a YAML file. Invalid files are
// rejected so a bad deploy fails at startup rather than at request time.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genre config: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse genre config: %w", err)
	}
	t, err := New(f.Genres)
	if err != nil {
		return nil, fmt.Errorf("genre config %s: %w", path, err)
	}
	return t, nil
}

// Genres returns the table rows in catalog order.
func (t *Table) Genres() []Genre {
	out := make([]Genre, len(t.genres))
	copy(out, t.genres)
	return out
}

// Lookup finds a genre by id, case-insensitively.
func (t *Table) Lookup(id string) (Genre, bool) {
	i, ok := t.index[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Genre{}, false
	}
	return t.genres[i], true
}

// Len reports the number of configured genres.
func (t *Table) Len() int {
	return len(t.genres)
}

// Default returns the built-in table. Order matches the public genre
// catalog; hip_hop and country carry the curated prompt sets the product
// launched with.
func Default() *Table {
	t, err := New(defaultGenres())
	if err != nil {
		panic(fmt.Errorf("default genre table: %w", err))
	}
	return t
}

func defaultGenres() []Genre {
	return []Genre{
		{
			ID:            "pop",
			Name:          "Pop",
			Description:   "Popular music with catchy melodies",
			ProviderGenre: "pop",
			Prompts: []string{
				"Glossy synth-pop anthem with shimmering arpeggios, punchy side-chained bass, and a chorus built for stadium singalongs. Mood: Euphoric, Bright.",
				"Radio-ready dance-pop with crisp handclaps, bubbly plucks, and a drop that sparkles like confetti. Mood: Playful, Carefree.",
				"Moody electro-pop with airy vocal chops, pulsing sub bass, and neon late-night energy. Mood: Dreamy, Confident.",
				"Upbeat funk-pop groove with slap bass, tight rhythm guitar, and brass stabs straight off the disco floor. Mood: Groovy, Joyful.",
				"Anthemic power-pop with driving drums, layered harmonies, and a key change that lifts the roof. Mood: Triumphant, Uplifting.",
			},
		},
		{
			ID:            "rock",
			Name:          "Rock",
			Description:   "Guitar-driven energetic music",
			ProviderGenre: "rock",
			Prompts: []string{
				"Arena rock juggernaut with crunchy power chords, thundering toms, and a solo that screams down the highway. Mood: Defiant, Electric.",
				"Garage rock stomper with fuzzed-out riffs, tambourine swagger, and raw basement energy. Mood: Rebellious, Loose.",
				"Alt-rock slow burn that builds from clean arpeggios to a wall of distortion and crashing cymbals. Mood: Brooding, Cathartic.",
				"Classic blues rock shuffle with wailing bends, a greasy organ, and boots-on-the-bar attitude. Mood: Gritty, Swaggering.",
				"Pop-punk sprint with palm-muted verses, gang-vocal choruses, and double-time drums that never let up. Mood: Restless, Fun.",
			},
		},
		{
			ID:            "jazz",
			Name:          "Jazz",
			Description:   "Improvisational complex harmonies",
			ProviderGenre: "jazz",
			Prompts: []string{
				"Smoky late-night jazz trio with brushed drums, walking upright bass, and piano lines that curl like cigarette smoke. Mood: Intimate, Cool.",
				"Uptempo bebop burner with rapid-fire horn trades, ride cymbal chatter, and fearless chromatic runs. Mood: Frantic, Brilliant.",
				"Lush big band swing with tight brass hits, saxophone solis, and a dance floor begging for motion. Mood: Elegant, Festive.",
				"Modal jazz exploration with suspended chords, breathy tenor sax, and space that lets every note breathe. Mood: Contemplative, Deep.",
				"Latin jazz groove with montuno piano, congas and timbales, and horns that blaze like afternoon sun. Mood: Vibrant, Warm.",
			},
		},
		{
			ID:            "classical",
			Name:          "Classical",
			Description:   "Traditional orchestral music",
			ProviderGenre: "classical",
			Prompts: []string{
				"Sweeping orchestral overture with soaring strings, heroic brass fanfares, and timpani rolls like distant thunder. Mood: Majestic, Grand.",
				"Delicate solo piano nocturne with rubato phrasing and moonlit melancholy. Mood: Tender, Reflective.",
				"Driving string quartet with urgent ostinatos, biting staccato, and baroque fire. Mood: Intense, Precise.",
				"Pastoral chamber piece with lilting woodwinds, warm cellos, and meadows in every phrase. Mood: Serene, Gentle.",
				"Cinematic neo-classical build with pulsing piano, layered strings, and a crescendo that swallows the sky. Mood: Epic, Stirring.",
			},
		},
		{
			ID:            "electronic",
			Name:          "Electronic",
			Description:   "Digital synthesized music",
			ProviderGenre: "electronic",
			Prompts: []string{
				"Festival-sized progressive house with euphoric supersaws, rolling bass, and a drop engineered for fireworks. Mood: Euphoric, Massive.",
				"Deep, hypnotic techno with rumbling kicks, metallic percussion, and warehouse fog. Mood: Dark, Relentless.",
				"Chillwave synthscape with tape-warped pads, lazy beats, and sunset nostalgia. Mood: Mellow, Wistful.",
				"High-voltage drum and bass with chopped breaks, growling reese bass, and neon adrenaline. Mood: Frenetic, Fierce.",
				"Glitchy future bass with pitch-bent leads, stuttered vocal chops, and candy-coated drops. Mood: Playful, Explosive.",
			},
		},
		{
			ID:            "hip_hop",
			Name:          "Hip Hop",
			Description:   "Rhythmic beats with spoken lyrics",
			ProviderGenre: "hip-hop",
			Prompts: []string{
				"West Coast heatwave with booming 808s, funky synth bass, and distorted vocal chops — think Dr. Dre meets Travis Scott in 2025. Mood: Swagger, Dominance.",
				"Dark, cinematic trap beat layered with haunting strings, glitchy hi-hats, and bass drops that shake your bones. Mood: Gritty, Powerful.",
				"Old-school NYC boom bap with a modern twist — crunchy snares, jazzy horns, and lyrical storytelling energy. Mood: Hustle, Confidence.",
				"High-energy club banger with Afrobeat-influenced percussion, pitched-up vocal samples, and a beat drop that hits like a freight train. Mood: Party, Unstoppable.",
				"Futuristic drill beat with icy synths, rapid hi-hat rolls, and cinematic FX — imagine Blade Runner meets Pop Smoke. Mood: Cold, Intense.",
			},
		},
		{
			ID:            "country",
			Name:          "Country",
			Description:   "Folk-influenced American music",
			ProviderGenre: "country",
			Prompts: []string{
				"Southern backroad anthem with stomping drums, dirty slide guitar, and an outlaw vibe — perfect for a bonfire brawl. Mood: Rowdy, Rebel.",
				"Modern country-pop hit with upbeat acoustic strums, catchy hooks, and arena-sized choruses — made to belt in a pickup truck. Mood: Free, Wild.",
				"Banjo-driven country rock with a pounding kick, electric guitar solos, and whiskey-fueled energy. Mood: Bold, Celebratory.",
				"High-octane bluegrass fusion with double-time fiddle riffs, foot-stomping rhythm, and explosive breakdowns. Mood: Fast, Fiery.",
				"Dark country trap with ominous Dobro slides, moody pads, and deep bass — Johnny Cash meets trap house. Mood: Mysterious, Menacing.",
			},
		},
		{
			ID:            "folk",
			Name:          "Folk",
			Description:   "Traditional acoustic cultural music",
			ProviderGenre: "acoustic",
			Prompts: []string{
				"Fireside folk ballad with fingerpicked acoustic guitar, soft harmonica, and stories worn smooth by the road. Mood: Warm, Honest.",
				"Foot-stomping folk revival with banjo rolls, group claps, and choruses made for barn raisings. Mood: Joyful, Communal.",
				"Haunting mountain folk with droning fiddle, sparse percussion, and mist over the hollow. Mood: Mournful, Timeless.",
				"Breezy indie folk with ukulele strums, glockenspiel sparkles, and morning-light optimism. Mood: Light, Hopeful.",
				"Celtic-tinged folk dance with tin whistle, bodhran heartbeat, and pints raised high. Mood: Spirited, Rousing.",
			},
		},
	}
}
