package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingTranscriptRepository defines the repository interface for embedding operations
type EmbeddingTranscriptRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Transcript, error)
}

// EmbeddingChunkRepository defines the repository interface for chunked transcript embeddings
type EmbeddingChunkRepository interface {
	ReplaceChunks(ctx context.Context, transcriptID string, chunks []domain.TranscriptChunk) error
}

// EmbeddingService chunks a transcript and stores one embedding per chunk.
// Called by the background worker when an embedding job is claimed.
type EmbeddingService struct {
	client    EmbeddingClient
	repo      EmbeddingTranscriptRepository
	chunkRepo EmbeddingChunkRepository
	chunkCfg  ChunkConfig
	uuidGen   UUIDGenerator
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo EmbeddingTranscriptRepository, chunkRepo EmbeddingChunkRepository) *EmbeddingService {
	return &EmbeddingService{
		client:    client,
		repo:      repo,
		chunkRepo: chunkRepo,
		chunkCfg:  DefaultChunkConfig(),
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// GenerateEmbedding chunks the transcript and replaces its stored chunk
// embeddings. Chunks carry the transcript's ticker and period so search can
// filter without a join.
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, transcriptID string) error {
	transcript, err := s.repo.GetByID(ctx, transcriptID)
	if err != nil {
		return err
	}

	chunks := chunkText(transcript.Content, s.chunkCfg)
	if len(chunks) == 0 {
		return fmt.Errorf("transcript %s has no embeddable content", transcriptID)
	}

	createdAt := time.Now().UTC()
	entries := make([]domain.TranscriptChunk, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := s.client.GenerateEmbedding(ctx, buildChunkEmbeddingText(transcript, chunk))
		if err != nil {
			return fmt.Errorf("failed to generate chunk embedding: %w", err)
		}

		entries = append(entries, domain.TranscriptChunk{
			ID:           s.uuidGen.NewString(),
			TranscriptID: transcript.ID,
			Ticker:       transcript.Ticker,
			Year:         transcript.Year,
			Quarter:      transcript.Quarter,
			ChunkIndex:   i,
			Content:      chunk,
			Embedding:    embedding,
			CreatedAt:    createdAt,
		})
	}

	if err := s.chunkRepo.ReplaceChunks(ctx, transcriptID, entries); err != nil {
		return fmt.Errorf("failed to update transcript chunks: %w", err)
	}

	return nil
}

// buildChunkEmbeddingText prefixes each chunk with its company and period so
// the embedding carries that context.
func buildChunkEmbeddingText(t *domain.Transcript, chunk string) string {
	company := t.Ticker
	if c, ok := domain.LookupCompany(t.Ticker); ok {
		company = fmt.Sprintf("%s (%s)", c.Name, c.Ticker)
	}
	return fmt.Sprintf("%s earnings call %s\n\n%s", company, t.Period(), chunk)
}
