package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIEmbeddingModel is the OpenAI model used for generating
	// embeddings. The 3-series models accept a dimensions parameter, so the
	// output can be shrunk to match the vector column.
	DefaultOpenAIEmbeddingModel = openai.SmallEmbedding3
	// DefaultOpenAIEmbeddingDimensions is the native vector size of the
	// default embedding model.
	DefaultOpenAIEmbeddingDimensions = 1536
	// DefaultOpenAIChatModel is the OpenAI model used for answer generation
	DefaultOpenAIChatModel = openai.GPT4oMini
)

// openaiAPI abstracts the OpenAI SDK calls for testing
type openaiAPI interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures the OpenAI-compatible client. BaseURL may point at
// any provider speaking the OpenAI API.
type OpenAIConfig struct {
	APIKey              string
	BaseURL             string
	ChatModel           string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	Temperature         float32
}

// OpenAIClient wraps the OpenAI API for chat completions and embeddings.
type OpenAIClient struct {
	api            openaiAPI
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimensions     int
	temperature    float32
}

// NewOpenAIClient creates a new OpenAI client with explicit configuration.
// The configured embedding dimensions must be achievable by the embedding
// model: ada-002 has a fixed output size, so asking it for anything else is
// a wiring mistake caught here rather than on every insert.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultOpenAIChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultOpenAIEmbeddingModel
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = DefaultOpenAIEmbeddingDimensions
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.EmbeddingModel == openai.AdaEmbeddingV2 && cfg.EmbeddingDimensions != DefaultOpenAIEmbeddingDimensions {
		return nil, fmt.Errorf("embedding model %s always produces %d dimensions, cannot produce %d",
			cfg.EmbeddingModel, DefaultOpenAIEmbeddingDimensions, cfg.EmbeddingDimensions)
	}
	return &OpenAIClient{
		api:            openai.NewClientWithConfig(clientCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     cfg.EmbeddingDimensions,
		temperature:    cfg.Temperature,
	}, nil
}

// Complete generates a chat completion for the given system and user prompts.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *OpenAIClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	}
	// ada-002 rejects the dimensions parameter; every later model honors it.
	if c.embeddingModel != openai.AdaEmbeddingV2 {
		req.Dimensions = c.dimensions
	}

	resp, err := c.api.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(embedding))
	}
	return embedding, nil
}

// Ping verifies the API is reachable by embedding a short string.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	_, err := c.GenerateEmbedding(ctx, "ping")
	return err
}
