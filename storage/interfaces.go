package storage

import (
	"context"
	"time"

	"github.com/poiesic/progdex/core"
)

// Entry is one stored collection member: an indexed document together with
// its embedding vector.
type Entry struct {
	ID       string
	Document string
	Metadata core.Metadata
	Vector   []float32
}

// CollectionInfo is the collection-level manifest persisted alongside the
// entries. Embedder records the identity of the backend that produced the
// collection's vectors; Dimension is fixed by the first committed batch.
type CollectionInfo struct {
	Name      string
	Embedder  string
	Dimension int
	CreatedAt time.Time
}

// CollectionRepository is a persistent, named store of document entries
// keyed by id. One repository instance owns the storage path; the batch
// loader and query engine share that single handle and never open
// independent writers against the same path.
//
// Implementations must be safe for concurrent readers; writers are assumed
// sequential (the loader issues batches strictly in order).
type CollectionRepository interface {
	// EnsureCollection opens the named collection, creating an empty one if
	// absent. An existing collection built by a different embedder returns
	// ErrEmbedderMismatch; the info of the opened collection is returned
	// otherwise.
	EnsureCollection(ctx context.Context, name, embedderID string) (CollectionInfo, error)

	// RecreateCollection deletes any existing collection of that name and
	// creates a fresh empty one bound to the given embedder identity.
	// Absence of an existing collection is not an error.
	RecreateCollection(ctx context.Context, name, embedderID string) (CollectionInfo, error)

	// HasCollection reports whether the named collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// CollectionInfo returns the manifest of the named collection, or
	// ErrCollectionNotFound.
	CollectionInfo(ctx context.Context, name string) (CollectionInfo, error)

	// ListCollections returns the names of all collections, sorted.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection removes the named collection and all its entries.
	// Deleting an absent collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// UpsertBatch inserts or overwrites entries by id as one durable write.
	// The first committed batch fixes the collection's vector dimension;
	// later batches with a different dimension fail with
	// ErrDimensionMismatch and leave the store unchanged.
	UpsertBatch(ctx context.Context, name string, entries []Entry) error

	// GetByIDs retrieves entries by id. Missing ids are skipped, not errors.
	GetByIDs(ctx context.Context, name string, ids []string) ([]Entry, error)

	// GetAll returns every entry of the collection, ordered by id. Intended
	// for statistics and audits, not query-time logic.
	GetAll(ctx context.Context, name string) ([]Entry, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context, name string) (int, error)

	// Search returns up to k entries ranked by ascending distance from the
	// query vector, ties broken by ascending id. Only entries matching the
	// predicate are eligible; the predicate is exact, never approximate.
	// A nil predicate matches everything.
	Search(ctx context.Context, name string, vector []float32, k int, pred Predicate) ([]core.SearchResult, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
