package local

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/progdex/ai"
)

// DefaultDimension is the vector dimension used when none is configured.
const DefaultDimension = 256

// Embedder is the zero-configuration embedding backend. It hashes
// character trigrams into a fixed number of signed buckets and normalizes
// the result to unit length, so identical text always yields an identical
// unit vector without any external service or credential.
//
// Retrieval quality is below a trained model's; the backend exists so a
// catalog can be indexed and queried with no setup at all.
type Embedder struct {
	dim      int
	identity string
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder)

// WithDimension sets the vector dimension. Collections built with one
// dimension cannot be reopened with another; the dimension is part of the
// embedder identity.
func WithDimension(dim int) Option {
	return func(e *Embedder) {
		if dim > 0 {
			e.dim = dim
		}
	}
}

// NewEmbedder creates a local deterministic embedder.
func NewEmbedder(opts ...Option) *Embedder {
	e := &Embedder{dim: DefaultDimension}
	for _, opt := range opts {
		opt(e)
	}
	e.identity = fmt.Sprintf("local/trigram-v1-%d", e.dim)
	return e
}

// EmbedText generates the deterministic embedding for a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts,
// order-preserving. It never fails.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

// Identity returns the backend identity recorded with collections built by
// this embedder.
func (e *Embedder) Identity() string {
	return e.identity
}

func (e *Embedder) embed(text string) []float32 {
	vector := make([]float32, e.dim)

	runes := []rune(text)
	if len(runes) == 0 {
		return vector
	}

	// Rune trigrams cope with scripts that do not delimit words with
	// spaces, which the source catalog's Chinese text does not.
	for i := 0; i <= len(runes)-3; i++ {
		h := hashTrigram(runes[i : i+3])
		bucket := int(h % uint64(e.dim))
		if h&(1<<63) != 0 {
			vector[bucket] -= 1
		} else {
			vector[bucket] += 1
		}
	}
	if len(runes) < 3 {
		h := hashTrigram(runes)
		vector[int(h%uint64(e.dim))] += 1
	}

	return ai.NormalizeVector(vector)
}

func hashTrigram(runes []rune) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(string(runes)))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
