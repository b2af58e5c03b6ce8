// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package progdex

import (
	"context"
	"log/slog"

	"github.com/poiesic/progdex/ai"
	"github.com/poiesic/progdex/ai/local"
	"github.com/poiesic/progdex/ingest"
	"github.com/poiesic/progdex/query"
	"github.com/poiesic/progdex/storage"
	"github.com/poiesic/progdex/storage/badger"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "programs"

// Index is the single owned handle over one storage path and collection.
// The batch loader and query engine both operate through it; no second
// writer is ever opened against the same path.
type Index struct {
	repo       storage.CollectionRepository
	embedder   ai.Embedder
	collection string
	logger     *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	embedder   ai.Embedder
	collection string
	inMemory   bool
}

// WithEmbedder sets the embedding backend. Default is the local
// deterministic embedder, which needs no credential or network.
func WithEmbedder(embedder ai.Embedder) IndexOption {
	return func(o *indexOptions) {
		o.embedder = embedder
	}
}

// WithCollection sets the collection name. Default is DefaultCollection.
func WithCollection(name string) IndexOption {
	return func(o *indexOptions) {
		o.collection = name
	}
}

// WithInMemory uses an in-memory store instead of the path. Mainly for
// tests.
func WithInMemory() IndexOption {
	return func(o *indexOptions) {
		o.inMemory = true
	}
}

// NewIndex opens an index over the storage path.
func NewIndex(filePath string, opts ...IndexOption) (*Index, error) {
	options := &indexOptions{
		embedder:   local.NewEmbedder(),
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Index{
		repo:       badger.NewRepositoryWithBackend(backend),
		embedder:   options.embedder,
		collection: options.collection,
		logger:     slog.Default(),
	}, nil
}

// Close releases the underlying store.
func (ix *Index) Close() error {
	if err := ix.repo.Close(); err != nil {
		ix.logger.Error("error closing collection repository", "err", err)
		return err
	}
	return nil
}

// Repository returns the collection store handle.
func (ix *Index) Repository() storage.CollectionRepository {
	return ix.repo
}

// Embedder returns the configured embedding backend.
func (ix *Index) Embedder() ai.Embedder {
	return ix.embedder
}

// Collection returns the bound collection name.
func (ix *Index) Collection() string {
	return ix.collection
}

// HasCollection reports whether the bound collection already exists in the
// store, without checking embedder compatibility.
func (ix *Index) HasCollection(ctx context.Context) (bool, error) {
	return ix.repo.HasCollection(ctx, ix.collection)
}

// Open opens the bound collection, creating an empty one if absent. An
// existing collection built by a different embedding backend fails with
// storage.ErrEmbedderMismatch rather than silently mixing vector spaces.
func (ix *Index) Open(ctx context.Context) (storage.CollectionInfo, error) {
	return ix.repo.EnsureCollection(ctx, ix.collection, ix.embedder.Identity())
}

// NewLoader creates a batch loader for the bound collection.
func (ix *Index) NewLoader(opts ...ingest.Option) (*ingest.Loader, error) {
	return ingest.NewLoader(ix.repo, ix.embedder, ix.collection, opts...)
}

// NewEngine creates a query engine for the bound collection.
func (ix *Index) NewEngine(opts ...query.Option) (*query.Engine, error) {
	return query.NewEngine(ix.repo, ix.embedder, ix.collection, opts...)
}
