package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
)

// Archiver mirrors raw payloads to remote storage.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte) error
}

// rawPayload is the on-disk representation of one extraction.
type rawPayload struct {
	Ticker      string                  `json:"ticker"`
	Company     string                  `json:"company"`
	Year        int                     `json:"year"`
	Quarter     string                  `json:"quarter"`
	Source      domain.TranscriptSource `json:"source"`
	CallDate    string                  `json:"call_date"`
	Content     string                  `json:"content"`
	ExtractedAt string                  `json:"extracted_at"`
}

// RawStore persists extraction payloads as JSON files under a data directory,
// optionally mirroring each file to an archiver.
type RawStore struct {
	dir      string
	archiver Archiver
	now      func() time.Time
}

func NewRawStore(dir string) *RawStore {
	return &RawStore{dir: dir, now: time.Now}
}

// WithArchiver enables remote mirroring. Archive failures are logged, never
// fatal: the local file is the system of record.
func (s *RawStore) WithArchiver(a Archiver) *RawStore {
	s.archiver = a
	return s
}

// Save writes the payload as {TICKER}_{year}_{quarter}_{timestamp}.json and
// returns the file path.
func (s *RawStore) Save(ctx context.Context, res *Result) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	now := s.now().UTC()
	filename := fmt.Sprintf("%s_%d_%s_%s.json",
		res.Company.Ticker, res.Period.Year, res.Period.QuarterLabel(), now.Format("20060102_150405"))

	payload := rawPayload{
		Ticker:      res.Company.Ticker,
		Company:     res.Company.Name,
		Year:        res.Period.Year,
		Quarter:     res.Period.QuarterLabel(),
		Source:      res.Source,
		CallDate:    res.CallDate.Format("2006-01-02"),
		Content:     res.Content,
		ExtractedAt: now.Format(time.RFC3339),
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write payload: %w", err)
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, filename, body); err != nil {
			log.Printf("rawstore: archive failed for %s: %v", filename, err)
		}
	}

	return path, nil
}
