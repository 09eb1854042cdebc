package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIImageModel string
	OpenAITextModel  string

	GoogleAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	VeoModel      string

	BeatovenAPIKey  string
	BeatovenBaseURL string

	GenreConfigPath string

	ProviderTimeout   time.Duration
	MusicPollInterval time.Duration
	MusicPollBudget   time.Duration
	MusicPollRetries  int
	MusicDurationSec  int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Provider API keys are optional: a missing key
// disables that provider per request instead of blocking startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel:  getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		OpenAITextModel:   getEnv("OPENAI_TEXT_MODEL", "o4-mini"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		VeoModel:          getEnv("VEO_MODEL", "veo-2.0-generate-001"),
		BeatovenAPIKey:    os.Getenv("BEATOVEN_API_KEY"),
		BeatovenBaseURL:   getEnv("BEATOVEN_BASE_URL", "https://api.beatoven.ai/v1"),
		GenreConfigPath:   os.Getenv("GENRE_CONFIG_PATH"),
		ProviderTimeout:   time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)),
		MusicPollInterval: time.Second * time.Duration(getEnvInt("MUSIC_POLL_INTERVAL_SECONDS", 3)),
		MusicPollBudget:   time.Second * time.Duration(getEnvInt("MUSIC_POLL_BUDGET_SECONDS", 120)),
		MusicPollRetries:  getEnvInt("MUSIC_POLL_RETRIES", 3),
		MusicDurationSec:  getEnvInt("DEFAULT_MUSIC_DURATION", 60),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ShutdownTimeout:   time.Second * time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.MusicPollInterval <= 0 {
		return nil, fmt.Errorf("MUSIC_POLL_INTERVAL_SECONDS must be positive")
	}

	if cfg.MusicPollBudget <= 0 {
		return nil, fmt.Errorf("MUSIC_POLL_BUDGET_SECONDS must be positive")
	}

	if cfg.MusicDurationSec <= 0 {
		return nil, fmt.Errorf("DEFAULT_MUSIC_DURATION must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
