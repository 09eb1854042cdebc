package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"genesis/internal/dispatch"
	"genesis/internal/domain/genrecfg"
	"genesis/internal/http/handlers"
	"genesis/internal/http/httpapi"
	"genesis/internal/infra"
	"genesis/internal/providers/image"
	"genesis/internal/providers/music"
	"genesis/internal/providers/prompt"
	"genesis/internal/providers/text"
	"genesis/internal/providers/video"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Genre table: built-in defaults, replaceable wholesale from YAML.
	table := genrecfg.Default()
	if cfg.GenreConfigPath != "" {
		table, err = genrecfg.Load(cfg.GenreConfigPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.GenreConfigPath).Msg("failed to load genre config")
		}
		logger.Info().Str("path", cfg.GenreConfigPath).Int("genres", table.Len()).Msg("loaded genre config")
	}
	resolver := prompt.NewResolver(table)

	imageClient := image.NewClient(image.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIImageModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	videoClient := video.NewClient(video.Options{
		APIKey:  cfg.GoogleAPIKey,
		Model:   cfg.VeoModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	geminiClient := text.NewGeminiClient(text.GeminiOptions{
		APIKey:  cfg.GoogleAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	openaiClient := text.NewOpenAIClient(text.OpenAIOptions{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAITextModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	beatoven := music.NewClient(music.Options{
		APIKey:  cfg.BeatovenAPIKey,
		BaseURL: cfg.BeatovenBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	musicProvider := music.NewProvider(beatoven, resolver, cfg.MusicDurationSec)

	warnUnconfigured(logger, "OPENAI_API_KEY", imageClient.Configured())
	warnUnconfigured(logger, "GOOGLE_API_KEY", geminiClient.Configured())
	warnUnconfigured(logger, "BEATOVEN_API_KEY", beatoven.Configured())
	if beatoven.TestMode() {
		logger.Warn().Msg("Beatoven client is in TEST_MODE, music responses are mocked")
	}

	// Registration order is the catalog order and the auto-routing
	// preference within a kind.
	dispatcher := dispatch.NewDispatcher(
		logger,
		imageClient,
		videoClient,
		geminiClient,
		openaiClient,
		musicProvider,
	)
	poller := dispatch.NewPoller(dispatch.PollerOptions{
		Source:   beatoven,
		Interval: cfg.MusicPollInterval,
		Budget:   cfg.MusicPollBudget,
		Retries:  cfg.MusicPollRetries,
		Logger:   logger,
	})

	app := handlers.NewApp(handlers.AppOptions{
		Dispatcher: dispatcher,
		Poller:     poller,
		Tracks:     beatoven,
		Genres:     table,
		Logger:     logger,
	})
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func warnUnconfigured(logger infra.Logger, name string, configured bool) {
	if !configured {
		logger.Warn().Str("var", name).Msg("provider API key not configured, dispatches to it will fail")
	}
}
