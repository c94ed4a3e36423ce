package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/catalog/postgres"
	"github.com/kozaktomas/style-genie/internal/config"
	"github.com/kozaktomas/style-genie/internal/log"
)

// catalogBackend is the asset store plus the (possibly cached) read path.
type catalogBackend struct {
	Store  catalog.Store
	Reader catalog.Reader
	cache  *catalog.CachedReader
	close  func()
}

func (b *catalogBackend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Invalidate drops cached catalog reads after a write.
func (b *catalogBackend) Invalidate(ctx context.Context) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Invalidate(ctx); err != nil {
		log.Warn(log.Fields{"error": err}, "Failed to invalidate catalog cache")
	}
}

// openCatalog connects to PostgreSQL when DATABASE_URL is set and falls back to
// the bundled demo catalog in memory otherwise. Redis, when configured, caches reads.
func openCatalog(ctx context.Context, cfg *config.Config, requireDatabase bool) (*catalogBackend, error) {
	backend := &catalogBackend{}
	var closers []func()

	if cfg.Database.URL != "" {
		pool, err := postgres.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		closers = append(closers, func() { pool.Close() })
		backend.Store = postgres.NewAssetRepository(pool)
		log.Info(nil, "Using PostgreSQL hairstyle catalog")
	} else {
		if requireDatabase {
			return nil, errors.New("DATABASE_URL environment variable is required")
		}
		assets, err := catalog.SeedAssets()
		if err != nil {
			return nil, err
		}
		backend.Store = catalog.NewMemoryStore(assets...)
		log.Warn(log.Fields{"assets": len(assets)}, "DATABASE_URL not set, using in-memory demo catalog")
	}
	backend.Reader = backend.Store

	if cfg.Redis.Address != "" {
		client, err := catalog.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn(log.Fields{"error": err}, "Redis unavailable, catalog reads are not cached")
		} else {
			closers = append(closers, func() { client.Close() })
			backend.cache = catalog.NewCachedReader(backend.Store, client, cfg.Pipeline.CatalogCacheTTL)
			backend.Reader = backend.cache
		}
	}

	backend.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return backend, nil
}

// newProvider builds the AI backend by name. An empty name or "none" disables AI.
func newProvider(ctx context.Context, cfg *config.Config, name string) (ai.Provider, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		pricing := cfg.GetModelPricing("gpt-4.1-mini")
		return ai.NewOpenAIProvider(cfg.OpenAI.Token,
			ai.RequestPricing{Input: pricing.Standard.Input, Output: pricing.Standard.Output},
		), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		pricing := cfg.GetModelPricing("gemini-2.5-flash")
		provider, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey,
			ai.RequestPricing{Input: pricing.Standard.Input, Output: pricing.Standard.Output},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return provider, nil
	case "ollama":
		return ai.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: gemini, openai, ollama, none)", name)
	}
}

// resolveProviderName prefers the flag over AI_PROVIDER.
func resolveProviderName(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.AI.Provider
}

// printUsage reports token usage and cost of an AI provider.
func printUsage(provider ai.Provider) {
	if provider == nil {
		return
	}
	usage := provider.GetUsage()
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}
	fmt.Printf("\nAI usage (%s): %d input / %d output tokens, $%.4f\n",
		provider.Name(), usage.InputTokens, usage.OutputTokens, usage.TotalCost)
}
