package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/progdex/ai"
	"github.com/poiesic/progdex/core"
	"github.com/poiesic/progdex/storage"
)

// Engine executes semantic queries intersected with exact metadata filters
// against one collection.
type Engine struct {
	repo       storage.CollectionRepository
	embedder   ai.Embedder
	collection string
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a query engine bound to one collection.
func NewEngine(
	repo storage.CollectionRepository,
	embedder ai.Embedder,
	collection string,
	opts ...Option,
) (*Engine, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	e := &Engine{
		repo:       repo,
		embedder:   embedder,
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Query embeds the text, searches the collection for the k nearest entries
// matching the predicate, and converts raw distances to similarity scores
// (s = 1 - d). An empty result is a valid empty slice, not an error; a
// missing collection is ErrNotInitialized.
//
// The similarity conversion assumes a distance normalized to [0,1]. Values
// from an unbounded metric are reported as-is rather than clamped, since
// clamping would hide a backend misconfiguration.
func (e *Engine) Query(ctx context.Context, text string, k int, pred storage.Predicate) ([]core.QueryResult, error) {
	if err := e.checkInitialized(ctx); err != nil {
		return nil, err
	}
	if err := core.ValidateResultCount(k); err != nil {
		return nil, err
	}

	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", text, "err", err)
		return nil, err
	}

	matches, err := e.repo.Search(ctx, e.collection, vector, k, pred)
	if err != nil {
		e.logger.Error("error searching collection", "collection", e.collection, "err", err)
		return nil, err
	}

	results := make([]core.QueryResult, len(matches))
	for i, m := range matches {
		results[i] = core.QueryResult{
			ID:         m.ID,
			Document:   m.Document,
			Metadata:   m.Metadata,
			Distance:   m.Distance,
			Similarity: 1 - m.Distance,
		}
	}
	return results, nil
}

// Stats scans the whole collection and produces counts grouped by region
// and tier, plus the number of entries requiring a thesis. Intended for
// dataset audits, not query-time logic.
func (e *Engine) Stats(ctx context.Context) (core.CollectionStats, error) {
	if err := e.checkInitialized(ctx); err != nil {
		return core.CollectionStats{}, err
	}

	entries, err := e.repo.GetAll(ctx, e.collection)
	if err != nil {
		return core.CollectionStats{}, err
	}

	stats := core.CollectionStats{
		TotalCount: len(entries),
		ByRegion:   make(map[string]int),
		ByTier:     make(map[string]int),
	}
	for _, entry := range entries {
		stats.ByRegion[entry.Metadata.Region]++
		stats.ByTier[entry.Metadata.Tier]++
		if entry.Metadata.ThesisRequired {
			stats.ThesisRequired++
		}
	}
	return stats, nil
}

// checkInitialized verifies that the collection exists and was built by the
// engine's embedding backend. A collection written with one backend and read
// with another would compare vectors from incompatible spaces, so a
// differing identity is refused rather than producing meaningless scores.
func (e *Engine) checkInitialized(ctx context.Context) error {
	info, err := e.repo.CollectionInfo(ctx, e.collection)
	if err != nil {
		if errors.Is(err, storage.ErrCollectionNotFound) {
			return fmt.Errorf("%w: %q", ErrNotInitialized, e.collection)
		}
		return err
	}
	if info.Embedder != e.embedder.Identity() {
		return fmt.Errorf("%w: collection %q was built with %q, queried with %q",
			storage.ErrEmbedderMismatch, e.collection, info.Embedder, e.embedder.Identity())
	}
	return nil
}
