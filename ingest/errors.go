package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrRepositoryRequired is returned when a collection repository is not provided.
	ErrRepositoryRequired = errors.New("collection repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCollectionRequired is returned when a collection name is not provided.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

// Stages at which a rebuild batch can fail.
const (
	StageEmbedding = "embedding"
	StageStorage   = "storage"
)

// BatchError reports a failed rebuild batch: which batch failed, at what
// stage, and how many items earlier batches had already committed. Committed
// batches remain in the store; a caller-level retry of the whole rebuild is
// safe because a rebuild starts by recreating the collection.
type BatchError struct {
	Batch     int
	Stage     string
	Committed int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed during %s (%d items already committed): %v",
		e.Batch, e.Stage, e.Committed, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
