package domain

import (
	"fmt"
	"time"
)

// TranscriptSource identifies which provider produced a transcript.
type TranscriptSource string

const (
	TranscriptSourceSEC          TranscriptSource = "sec_filing"
	TranscriptSourceAlphaVantage TranscriptSource = "alpha_vantage"
	TranscriptSourceSample       TranscriptSource = "sample"
)

// Transcript is the raw earnings-call text for one company and quarter.
// (Ticker, Year, Quarter) is unique; re-extraction replaces the content in
// place and triggers re-embedding rather than creating a second record.
type Transcript struct {
	ID        string
	Ticker    string
	Year      int
	Quarter   int
	Source    TranscriptSource
	CallDate  time.Time
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Period returns the transcript's fiscal period.
func (t *Transcript) Period() Period {
	return Period{Year: t.Year, Quarter: t.Quarter}
}

// ValidateTranscript validates a Transcript instance.
func ValidateTranscript(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("transcript cannot be nil")
	}
	if t.ID == "" {
		return fmt.Errorf("transcript ID is required")
	}
	if !IsValidTicker(t.Ticker) {
		return fmt.Errorf("transcript Ticker is not a tracked company: %s", t.Ticker)
	}
	if err := t.Period().Validate(); err != nil {
		return fmt.Errorf("transcript period is invalid: %w", err)
	}
	if t.Content == "" {
		return fmt.Errorf("transcript Content is required")
	}
	if !isValidTranscriptSource(t.Source) {
		return fmt.Errorf("transcript Source is invalid: %s", t.Source)
	}
	return nil
}

func isValidTranscriptSource(s TranscriptSource) bool {
	switch s {
	case TranscriptSourceSEC, TranscriptSourceAlphaVantage, TranscriptSourceSample:
		return true
	}
	return false
}

// TranscriptChunk is an embedded segment of a transcript. Chunks carry a copy
// of the transcript's ticker and period so similarity search can filter
// without a join.
type TranscriptChunk struct {
	ID           string
	TranscriptID string
	Ticker       string
	Year         int
	Quarter      int
	ChunkIndex   int
	Content      string
	Embedding    []float32
	CreatedAt    time.Time
}
