package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service's failure modes.
var (
	// ErrNotReady means the vector index has not been loaded yet; callers
	// should answer with a structured "database not loaded" response.
	ErrNotReady = errors.New("vector index not loaded")
	// ErrCorpusEmpty means the index holds no units at all.
	ErrCorpusEmpty = errors.New("corpus is empty")
	// ErrUpstream marks a transient failure of an external model
	// collaborator; the request is retryable.
	ErrUpstream = errors.New("upstream model unavailable")
)

// UpstreamError wraps a failed call to the embedding or chat model with the
// operation that failed. It matches ErrUpstream via errors.Is.
type UpstreamError struct {
	Op  string // "embed" or "chat"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
