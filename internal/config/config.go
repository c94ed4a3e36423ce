package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	AI       AIConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Web      WebConfig
	Pipeline PipelineConfig
	Prices   PricesConfig
}

type AIConfig struct {
	Provider string // gemini, openai or ollama; empty disables the AI tier
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RedisConfig struct {
	Address  string // empty disables the catalog cache
	Password string
	DB       int
}

// StorageConfig points at the S3 bucket holding hairstyle images.
type StorageConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible stores
	PublicBaseURL   string // prefix for image URLs stored in the catalog
}

// AssetURLPrefix is the URL prefix of every image synced from the bucket,
// ending in a slash. Empty when no bucket is configured.
func (c StorageConfig) AssetURLPrefix() string {
	if base := strings.TrimRight(c.PublicBaseURL, "/"); base != "" {
		return base + "/"
	}
	if c.Bucket == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", c.Bucket, c.Region)
}

type WebConfig struct {
	Port           int
	Host           string
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	AllowedOrigins string  `yaml:"-"` // comma-separated CORS whitelist
}

// PipelineConfig tunes the recommendation pipeline.
type PipelineConfig struct {
	ExcerptLimit    int           `yaml:"excerpt_limit"`
	OracleTimeout   time.Duration `yaml:"oracle_timeout"`
	StoreTimeout    time.Duration `yaml:"store_timeout"`
	CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl"`
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// defaults mirrors the layout of defaults.yaml.
type defaults struct {
	Models   map[string]ModelPricing `yaml:"models"`
	Pipeline PipelineConfig          `yaml:"pipeline"`
	Web      WebConfig               `yaml:"web"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration parses values like "15s" or "2m". Invalid or non-positive values fall back to the default.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var d defaults
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	return &Config{
		AI: AIConfig{
			Provider: os.Getenv("AI_PROVIDER"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			Bucket:          envString("ASSET_BUCKET", "hairstyle-assets"),
			Region:          envString("AWS_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			PublicBaseURL:   os.Getenv("ASSET_PUBLIC_BASE_URL"),
		},
		Web: WebConfig{
			Port:           envInt("WEB_PORT", 8080),
			Host:           envString("WEB_HOST", "0.0.0.0"),
			RateLimitRPS:   envFloat("RATE_LIMIT_RPS", d.Web.RateLimitRPS),
			RateLimitBurst: envInt("RATE_LIMIT_BURST", d.Web.RateLimitBurst),
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
		Pipeline: PipelineConfig{
			ExcerptLimit:    envInt("CATALOG_EXCERPT_LIMIT", d.Pipeline.ExcerptLimit),
			OracleTimeout:   envDuration("ORACLE_TIMEOUT", d.Pipeline.OracleTimeout),
			StoreTimeout:    envDuration("STORE_TIMEOUT", d.Pipeline.StoreTimeout),
			CatalogCacheTTL: envDuration("CATALOG_CACHE_TTL", d.Pipeline.CatalogCacheTTL),
		},
		Prices: PricesConfig{Models: d.Models},
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
