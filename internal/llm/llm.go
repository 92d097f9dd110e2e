// Package llm provides chat-completion and embedding clients for the
// providers the answer pipeline can run against: a local Ollama endpoint
// (the default) or any OpenAI-compatible API.
package llm

import "errors"

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding does not match the configured dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoCompletion is returned when the provider returns no completion choices
	ErrNoCompletion = errors.New("no completion choices returned")
)
