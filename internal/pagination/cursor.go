// Package pagination implements opaque keyset cursors over (updated_at, id)
// ordered listings.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Cursor is a decoded pagination position.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

var ErrInvalidCursor = errors.New("invalid cursor format")

// EncodeCursor creates a base64 cursor from the last item's ID and timestamp.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// decodes to nil, meaning start from the top.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{
		LastID:    parts[0],
		Timestamp: timestamp,
	}, nil
}
