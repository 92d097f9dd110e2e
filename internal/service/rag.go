package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/telemetry"
)

const (
	// SimilarityThreshold is the minimum score for a chunk to count as relevant.
	SimilarityThreshold = 0.7
	// MaxRetrievalResults caps how many chunks retrieval returns.
	MaxRetrievalResults = 5
	// maxPromptChunks caps how many retrieved chunks feed the prompt.
	maxPromptChunks = 3
	// confidenceBoost scales average relevance into reported confidence.
	confidenceBoost = 1.2

	// NoResultsAnswer is returned when retrieval finds nothing relevant.
	NoResultsAnswer = "I couldn't find relevant information in the earnings calls database. Please try rephrasing your question or check if the data for your query has been extracted."

	answerSystemPrompt = "You are a financial analyst assistant answering questions about company earnings calls. Base every answer strictly on the supplied context."
)

// ChatClient defines the interface for generating chat completions
type ChatClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// SearchChunkRepository defines the repository interface for similarity search
type SearchChunkRepository interface {
	SearchSemantic(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]*ChunkMatch, error)
}

// QueryLogRepository records question/answer pairs for quality review
type QueryLogRepository interface {
	CreateQueryLog(ctx context.Context, entry QueryLogEntry) (string, error)
}

// SearchFilters narrows retrieval to a company or period. Zero values mean
// no filtering.
type SearchFilters struct {
	Ticker  string
	Year    int
	Quarter int
}

// ChunkMatch is one retrieved transcript chunk with its relevance score.
type ChunkMatch struct {
	ChunkID      string
	TranscriptID string
	Ticker       string
	Year         int
	Quarter      int
	ChunkIndex   int
	Content      string
	Score        float64
}

// AnswerSource describes one chunk that informed an answer.
type AnswerSource struct {
	Ticker  string  `json:"ticker"`
	Year    int     `json:"year"`
	Quarter int     `json:"quarter"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

// QueryLogEntry is one logged question/answer record.
type QueryLogEntry struct {
	Question   string
	Answer     string
	Confidence float64
	Filters    SearchFilters
	Sources    []AnswerSource
	DurationMs int64
}

// RAGService answers questions over the embedded transcript corpus:
// retrieve by cosine similarity, then generate grounded answers.
type RAGService struct {
	embedding EmbeddingClient
	chat      ChatClient
	chunkRepo SearchChunkRepository
	queryLog  QueryLogRepository
	now       func() time.Time
}

func NewRAGService(embedding EmbeddingClient, chat ChatClient, chunkRepo SearchChunkRepository, queryLog QueryLogRepository) *RAGService {
	return &RAGService{
		embedding: embedding,
		chat:      chat,
		chunkRepo: chunkRepo,
		queryLog:  queryLog,
		now:       time.Now,
	}
}

type SearchInput struct {
	Query   string
	Filters SearchFilters
	Limit   int
}

// Search embeds the query and returns chunks over the similarity threshold,
// best first.
func (s *RAGService) Search(ctx context.Context, input SearchInput) ([]*ChunkMatch, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Search", telemetry.SpanAttributes{
		Ticker:    input.Filters.Ticker,
		Operation: "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuestion
	}
	filters := normalizeFilters(input.Filters)
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > MaxRetrievalResults {
		limit = MaxRetrievalResults
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}

	matches, err := s.chunkRepo.SearchSemantic(ctx, embedding, filters, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	relevant := make([]*ChunkMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score >= SimilarityThreshold {
			relevant = append(relevant, m)
		}
	}
	return relevant, nil
}

type AskInput struct {
	Question string
	Filters  SearchFilters
	// TopK caps how many chunks retrieval considers; zero means the default.
	TopK int
}

type AskOutput struct {
	Answer     string
	Confidence float64
	Sources    []AnswerSource
}

// Ask answers a question from the transcript corpus. Filters not supplied
// explicitly are detected from the question text. With no relevant chunks the
// canned no-results answer comes back at zero confidence.
func (s *RAGService) Ask(ctx context.Context, input AskInput) (*AskOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Ask", telemetry.SpanAttributes{
		Ticker:    input.Filters.Ticker,
		Operation: "ask",
	})
	defer span.End()

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	started := s.now()
	filters := normalizeFilters(input.Filters)
	if filters == (SearchFilters{}) {
		filters = DetectFilters(question)
	}

	matches, err := s.Search(ctx, SearchInput{Query: question, Filters: filters, Limit: input.TopK})
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		out := &AskOutput{Answer: NoResultsAnswer, Confidence: 0}
		s.logQuery(ctx, question, filters, out, started)
		return out, nil
	}

	answer, err := s.chat.Complete(ctx, answerSystemPrompt, buildAnswerPrompt(question, matches))
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}

	out := &AskOutput{
		Answer:     strings.TrimSpace(answer),
		Confidence: confidence(matches),
		Sources:    sources(matches),
	}
	s.logQuery(ctx, question, filters, out, started)
	return out, nil
}

func (s *RAGService) logQuery(ctx context.Context, question string, filters SearchFilters, out *AskOutput, started time.Time) {
	if s.queryLog == nil {
		return
	}
	_, err := s.queryLog.CreateQueryLog(ctx, QueryLogEntry{
		Question:   question,
		Answer:     out.Answer,
		Confidence: out.Confidence,
		Filters:    filters,
		Sources:    out.Sources,
		DurationMs: s.now().Sub(started).Milliseconds(),
	})
	if err != nil {
		log.Printf("rag: failed to log query: %v", err)
	}
}

// buildAnswerPrompt renders the top chunks, each tagged with its company and
// period, followed by the question.
func buildAnswerPrompt(question string, matches []*ChunkMatch) string {
	top := matches
	if len(top) > maxPromptChunks {
		top = top[:maxPromptChunks]
	}

	sections := make([]string, 0, len(top))
	for _, m := range top {
		sections = append(sections, fmt.Sprintf("[%s %d Q%d]\n%s", m.Ticker, m.Year, m.Quarter, m.Content))
	}

	return fmt.Sprintf(`Based on the following earnings call information, please answer the user's question comprehensively and accurately.

Context from Earnings Calls:
%s

User Question: %s

Please provide a detailed answer based on the earnings call information above. If the information is not sufficient to answer the question completely, please mention what specific information is missing. Focus on facts and quotes from the earnings calls.

Answer:`, strings.Join(sections, "\n\n"), question)
}

// confidence maps average relevance to a reported confidence, lightly
// boosted and capped at 1.
func confidence(matches []*ChunkMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	c := (sum / float64(len(matches))) * confidenceBoost
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func sources(matches []*ChunkMatch) []AnswerSource {
	out := make([]AnswerSource, 0, len(matches))
	for _, m := range matches {
		out = append(out, AnswerSource{
			Ticker:  m.Ticker,
			Year:    m.Year,
			Quarter: m.Quarter,
			Score:   m.Score,
			Excerpt: makeExcerpt(m.Content),
		})
	}
	return out
}

const excerptMaxChars = 220

func makeExcerpt(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	runes := []rune(clean)
	if len(runes) <= excerptMaxChars {
		return clean
	}
	return strings.TrimSpace(string(runes[:excerptMaxChars])) + "..."
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
var quarterPattern = regexp.MustCompile(`(?i)\bQ([1-4])\b`)

// DetectFilters infers ticker and period filters from free-form question
// text: ticker symbols or company names, plus quarter/year mentions.
func DetectFilters(question string) SearchFilters {
	var filters SearchFilters
	upper := strings.ToUpper(question)
	lower := strings.ToLower(question)

	for _, company := range domain.AllCompanies() {
		if containsWord(upper, company.Ticker) || strings.Contains(lower, strings.ToLower(company.Name)) {
			filters.Ticker = company.Ticker
			break
		}
	}

	if m := quarterPattern.FindStringSubmatch(question); m != nil {
		filters.Quarter = int(m[1][0] - '0')
	}
	if m := yearPattern.FindStringSubmatch(question); m != nil {
		year := 0
		for _, r := range m[1] {
			year = year*10 + int(r-'0')
		}
		if year >= domain.MinYear && year <= domain.MaxYear {
			filters.Year = year
		}
	}

	return filters
}

func containsWord(haystack, word string) bool {
	idx := strings.Index(haystack, word)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(haystack[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(haystack) || !isWordChar(haystack[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(haystack[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// normalizeFilters maps the "All" ticker sentinel, which company pickers
// send for the unrestricted choice, to no ticker filter.
func normalizeFilters(f SearchFilters) SearchFilters {
	if strings.EqualFold(f.Ticker, "all") {
		f.Ticker = ""
	}
	return f
}

func validateFilters(f SearchFilters) error {
	if f.Ticker != "" && !domain.IsValidTicker(f.Ticker) {
		return domain.ErrCompanyNotFound
	}
	if f.Quarter != 0 && (f.Quarter < 1 || f.Quarter > 4) {
		return domain.ErrInvalidPeriod
	}
	if f.Year != 0 && (f.Year < domain.MinYear || f.Year > domain.MaxYear) {
		return domain.ErrInvalidPeriod
	}
	return nil
}
