package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.EmbeddingResponse), args.Error(1)
}

func (m *MockOpenAIAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func testClient(api openaiAPI, dims int) *OpenAIClient {
	return &OpenAIClient{
		api:            api,
		chatModel:      DefaultOpenAIChatModel,
		embeddingModel: DefaultOpenAIEmbeddingModel,
		dimensions:     dims,
		temperature:    defaultTemperature,
	}
}

func TestOpenAIClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := testClient(mockAPI, 1536)

	ctx := context.Background()
	expected := make([]float32, 1536)
	for i := range expected {
		expected[i] = float32(i) * 0.001
	}

	mockAPI.On("CreateEmbeddings", ctx, mock.Anything).Return(openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: expected}},
	}, nil)

	embedding, err := client.GenerateEmbedding(ctx, "What did NVIDIA say about data center revenue?")

	assert.NoError(t, err)
	assert.Len(t, embedding, 1536)
	assert.Equal(t, expected, embedding)
	mockAPI.AssertExpectations(t)
}

func TestOpenAIClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key"})
	require.NoError(t, err)

	embedding, err := client.GenerateEmbedding(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestOpenAIClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := testClient(mockAPI, 1536)

	ctx := context.Background()
	apiErr := errors.New("API rate limit exceeded")

	mockAPI.On("CreateEmbeddings", ctx, mock.Anything).Return(openai.EmbeddingResponse{}, apiErr)

	embedding, err := client.GenerateEmbedding(ctx, "test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestOpenAIClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := testClient(mockAPI, 1536)

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, mock.Anything).Return(openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: make([]float32, 512)}},
	}, nil)

	embedding, err := client.GenerateEmbedding(ctx, "test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := testClient(mockAPI, 1536)

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[1].Role == openai.ChatMessageRoleUser
	})).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "Revenue grew 50% year over year."}},
		},
	}, nil)

	answer, err := client.Complete(ctx, "You are a financial analyst.", "Summarize the quarter.")

	assert.NoError(t, err)
	assert.Equal(t, "Revenue grew 50% year over year.", answer)
	mockAPI.AssertExpectations(t)
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := testClient(mockAPI, 1536)

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, mock.Anything).Return(openai.ChatCompletionResponse{}, nil)

	_, err := client.Complete(ctx, "system", "prompt")

	assert.ErrorIs(t, err, ErrNoCompletion)
}

func TestOpenAIClient_Complete_EmptyPrompt(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "system", "")

	assert.Equal(t, ErrEmptyText, err)
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key"})

	require.NoError(t, err)
	assert.NotNil(t, client.api)
	assert.Equal(t, string(DefaultOpenAIChatModel), client.chatModel)
	assert.Equal(t, DefaultOpenAIEmbeddingModel, client.embeddingModel)
	assert.Equal(t, DefaultOpenAIEmbeddingDimensions, client.dimensions)
}

func TestNewOpenAIClient_AdaCannotShrinkDimensions(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{
		APIKey:              "test-key",
		EmbeddingModel:      openai.AdaEmbeddingV2,
		EmbeddingDimensions: 768,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot produce 768")
}

func TestOpenAIClient_GenerateEmbedding_RequestsConfiguredDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := testClient(mockAPI, 768)

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, mock.MatchedBy(func(req openai.EmbeddingRequestConverter) bool {
		r, ok := req.(openai.EmbeddingRequest)
		return ok && r.Dimensions == 768
	})).Return(openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: make([]float32, 768)}},
	}, nil)

	embedding, err := client.GenerateEmbedding(ctx, "test text")

	assert.NoError(t, err)
	assert.Len(t, embedding, 768)
	mockAPI.AssertExpectations(t)
}
