package config

import (
	"testing"
	"time"
)

func TestGetModelPricing_KnownModel(t *testing.T) {
	cfg := Load() // Load actual config with embedded defaults

	pricing := cfg.GetModelPricing("gpt-4.1-mini")

	if pricing.Standard.Input != 0.40 {
		t.Errorf("expected standard input price 0.40, got %f", pricing.Standard.Input)
	}

	if pricing.Standard.Output != 1.60 {
		t.Errorf("expected standard output price 1.60, got %f", pricing.Standard.Output)
	}
}

func TestGetModelPricing_GeminiModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gemini-2.5-flash")

	if pricing.Standard.Input != 0.30 {
		t.Errorf("expected gemini standard input 0.30, got %f", pricing.Standard.Input)
	}

	if pricing.Standard.Output != 2.50 {
		t.Errorf("expected gemini standard output 2.50, got %f", pricing.Standard.Output)
	}
}

func TestGetModelPricing_LocalModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("llama3.2-vision")

	if pricing.Standard.Input != 0 || pricing.Standard.Output != 0 {
		t.Errorf("expected zero pricing for local model, got %+v", pricing.Standard)
	}
}

func TestGetModelPricing_UnknownModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("unknown-model-xyz")

	if pricing != (ModelPricing{}) {
		t.Errorf("expected zero pricing for unknown model, got %+v", pricing)
	}
}

func TestLoad_PipelineDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Pipeline.ExcerptLimit != 20 {
		t.Errorf("expected excerpt limit 20, got %d", cfg.Pipeline.ExcerptLimit)
	}
	if cfg.Pipeline.OracleTimeout != 30*time.Second {
		t.Errorf("expected oracle timeout 30s, got %v", cfg.Pipeline.OracleTimeout)
	}
	if cfg.Pipeline.StoreTimeout != 5*time.Second {
		t.Errorf("expected store timeout 5s, got %v", cfg.Pipeline.StoreTimeout)
	}
	if cfg.Pipeline.CatalogCacheTTL != 10*time.Minute {
		t.Errorf("expected cache ttl 10m, got %v", cfg.Pipeline.CatalogCacheTTL)
	}
}

func TestLoad_PipelineOverrides(t *testing.T) {
	t.Setenv("CATALOG_EXCERPT_LIMIT", "5")
	t.Setenv("ORACLE_TIMEOUT", "2s")
	t.Setenv("STORE_TIMEOUT", "invalid")

	cfg := Load()

	if cfg.Pipeline.ExcerptLimit != 5 {
		t.Errorf("expected excerpt limit 5, got %d", cfg.Pipeline.ExcerptLimit)
	}
	if cfg.Pipeline.OracleTimeout != 2*time.Second {
		t.Errorf("expected oracle timeout 2s, got %v", cfg.Pipeline.OracleTimeout)
	}
	if cfg.Pipeline.StoreTimeout != 5*time.Second {
		t.Errorf("expected invalid store timeout to fall back to 5s, got %v", cfg.Pipeline.StoreTimeout)
	}
}

func TestLoad_WebConfig(t *testing.T) {
	cfg := Load()
	if cfg.Web.Port != 8080 || cfg.Web.Host != "0.0.0.0" {
		t.Errorf("unexpected web defaults: %+v", cfg.Web)
	}
	if cfg.Web.RateLimitRPS != 2 || cfg.Web.RateLimitBurst != 10 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.Web)
	}

	t.Setenv("WEB_PORT", "9090")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	cfg = Load()
	if cfg.Web.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Web.Port)
	}
	if cfg.Web.RateLimitRPS != 0.5 {
		t.Errorf("expected rps 0.5, got %v", cfg.Web.RateLimitRPS)
	}
}

func TestLoad_DatabaseDefaults(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "-1")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected negative value to fall back to 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default 5 idle conns, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoad_ProviderConfig(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "gemini-api-key-456")
	t.Setenv("OPENAI_TOKEN", "sk-test-token-123")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")

	cfg := Load()

	if cfg.AI.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %q", cfg.AI.Provider)
	}
	if cfg.Gemini.APIKey != "gemini-api-key-456" {
		t.Errorf("unexpected gemini key %q", cfg.Gemini.APIKey)
	}
	if cfg.OpenAI.Token != "sk-test-token-123" {
		t.Errorf("unexpected openai token %q", cfg.OpenAI.Token)
	}
	if cfg.Ollama.URL != "http://ollama:11434" {
		t.Errorf("unexpected ollama url %q", cfg.Ollama.URL)
	}
}

func TestLoad_StorageConfig(t *testing.T) {
	t.Setenv("ASSET_BUCKET", "")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	if cfg.Storage.Bucket != "hairstyle-assets" {
		t.Errorf("expected default bucket, got %q", cfg.Storage.Bucket)
	}
	if cfg.Redis.Address != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestStorageConfig_AssetURLPrefix(t *testing.T) {
	tests := []struct {
		name string
		cfg  StorageConfig
		want string
	}{
		{"public base url", StorageConfig{Bucket: "hair", Region: "eu-west-1", PublicBaseURL: "https://cdn.example.com/hair/"}, "https://cdn.example.com/hair/"},
		{"bucket host", StorageConfig{Bucket: "hair", Region: "eu-west-1"}, "https://hair.s3.eu-west-1.amazonaws.com/"},
		{"nothing configured", StorageConfig{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AssetURLPrefix(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
