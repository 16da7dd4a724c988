package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wishcdp/internal/adapter/repo"
	"wishcdp/internal/config"
	"wishcdp/internal/enrichment"
	"wishcdp/internal/imagecheck"
	"wishcdp/internal/infra"
	"wishcdp/internal/infra/credentials"
	"wishcdp/internal/pipeline"
	"wishcdp/internal/providers/ai"
	"wishcdp/internal/providers/search"
	"wishcdp/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	policy, err := config.LoadPolicy(cfg.PipelinePolicyPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: invalid pipeline policy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	credStore := credentials.NewStore(runner)

	geminiAPIKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if geminiAPIKey == "" {
		keyFromStore, err := credStore.GeminiAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load gemini api key from store")
		} else {
			geminiAPIKey = keyFromStore
		}
	}
	if geminiAPIKey == "" {
		logger.Fatal().Msg("worker: gemini api key is required")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	geminiClient, err := ai.NewGeminiClient(ai.Options{
		APIKey:     geminiAPIKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure gemini client")
	}

	googleClient := newGoogleClient(ctx, cfg, credStore, logger)

	var finder pipeline.ImageFinder
	var searcher enrichment.Searcher
	if googleClient != nil {
		finder = googleClient
		searcher = googleClient
	} else {
		logger.Warn().Msg("worker: google search not configured, image fallback and competitor lookup disabled")
	}

	validator := imagecheck.NewValidator(imagecheck.Options{
		Timeout: policy.ImageCheckTimeout(),
		Logger:  logger,
	})

	products := repo.NewProductRepository(pool)
	jobs := repo.NewJobRepository(runner, policy.RetryDelaySeconds)
	enricher := enrichment.NewService(geminiClient, searcher, products, logger)

	proc := pipeline.New(pipeline.Deps{
		Classifier: geminiClient,
		Extractor:  geminiClient,
		Products:   products,
		Images:     finder,
		Validator:  validator,
		Enricher:   enricher,
		Policy:     policy,
		Logger:     logger,
	})

	w := worker.New(worker.Options{
		Jobs:         jobs,
		Products:     products,
		Processor:    proc,
		MaxAttempts:  policy.MaxAttempts,
		PollInterval: cfg.WorkerPollInterval,
		Logger:       logger,
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func newGoogleClient(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, logger infra.Logger) *search.GoogleClient {
	apiKey := strings.TrimSpace(cfg.GoogleSearchAPIKey)
	if apiKey == "" {
		keyFromStore, err := credStore.GoogleSearchAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load google search api key from store")
		} else {
			apiKey = keyFromStore
		}
	}
	if apiKey == "" || cfg.GoogleSearchEngineID == "" {
		return nil
	}

	client, err := search.NewGoogleClient(search.Options{
		APIKey:   apiKey,
		EngineID: cfg.GoogleSearchEngineID,
		BaseURL:  cfg.GoogleSearchBaseURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("worker: failed to configure google search client")
		return nil
	}
	return client
}
