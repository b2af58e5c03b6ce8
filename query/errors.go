package query

import "errors"

var (
	// ErrRepositoryRequired is returned when a collection repository is not provided.
	ErrRepositoryRequired = errors.New("collection repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCollectionRequired is returned when a collection name is not provided.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrNotInitialized is returned when a query is issued against a
	// collection that does not exist yet. Detected before any work is
	// attempted.
	ErrNotInitialized = errors.New("collection not initialized")
)
