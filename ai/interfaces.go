package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
//
// An embedder has a stable identity string. Collections remember the
// identity of the embedder that produced them; opening a collection with a
// different embedder is an error, because distances from mixed backends are
// not comparable.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts and always has the same length. On error no partial vector
	// list is returned; the call fails atomically.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Identity returns a stable identifier for the backend and model, used
	// to detect backend mismatches when reopening a collection.
	Identity() string
}
