package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	// DefaultOllamaHost is the standard local Ollama endpoint
	DefaultOllamaHost = "http://localhost:11434"
	// DefaultChatModel is the Ollama model used for answer generation
	DefaultChatModel = "llama3"
	// DefaultEmbedModel is the Ollama model used for embeddings
	DefaultEmbedModel = "nomic-embed-text"
	// DefaultEmbeddingDimensions is the vector size produced by nomic-embed-text
	DefaultEmbeddingDimensions = 768

	defaultTemperature = 0.3
)

// OllamaConfig configures the local LLM client.
type OllamaConfig struct {
	Host                string
	ChatModel           string
	EmbedModel          string
	EmbeddingDimensions int
	Temperature         float64
}

// OllamaClient serves both chat completions and embeddings from a single
// Ollama endpoint, using separate models for each.
type OllamaClient struct {
	chat        *ollama.LLM
	embed       *ollama.LLM
	dimensions  int
	temperature float64
}

// NewOllamaClient creates an Ollama-backed client using defaults for any
// unset config fields.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}

	chat, err := ollama.New(
		ollama.WithModel(cfg.ChatModel),
		ollama.WithServerURL(cfg.Host),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}

	embed, err := ollama.New(
		ollama.WithModel(cfg.EmbedModel),
		ollama.WithServerURL(cfg.Host),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}

	return &OllamaClient{
		chat:        chat,
		embed:       embed,
		dimensions:  cfg.EmbeddingDimensions,
		temperature: cfg.Temperature,
	}, nil
}

// Complete generates a chat completion for the given system and user prompts.
func (c *OllamaClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.chat.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrNoCompletion
	}
	return resp.Choices[0].Content, nil
}

// GenerateEmbedding generates an embedding for the given text.
func (c *OllamaClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vectors, err := c.embed.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}
	if len(vectors[0]) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(vectors[0]))
	}
	return vectors[0], nil
}

// Ping verifies the Ollama endpoint is reachable by embedding a short string.
func (c *OllamaClient) Ping(ctx context.Context) error {
	_, err := c.embed.CreateEmbedding(ctx, []string{"ping"})
	return err
}
