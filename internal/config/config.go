package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Local LLM endpoint used for both chat and embeddings.
	OllamaHost     string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel    string `envconfig:"OLLAMA_MODEL" default:"llama3"`
	OllamaEmbedder string `envconfig:"OLLAMA_EMBED_MODEL" default:"nomic-embed-text"`
	EmbeddingDim   int    `envconfig:"EMBEDDING_DIM" default:"768"`

	// Optional OpenAI-compatible provider; when set it replaces Ollama.
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	// Earnings data sources.
	AlphaVantageKey string `envconfig:"ALPHA_VANTAGE_KEY"`
	SECUserAgent    string `envconfig:"SEC_USER_AGENT" default:"FinSight Research research@finsight.dev"`
	DataDir         string `envconfig:"DATA_DIR" default:"data/raw"`

	// Optional S3-compatible archive for raw extraction payloads.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"finsight-raw"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Static API key for write endpoints; empty disables auth.
	APIKey string `envconfig:"API_KEY"`

	SchedulerEnabled bool `envconfig:"SCHEDULER_ENABLED" default:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FINSIGHT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantageKey != ""
}

func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}
