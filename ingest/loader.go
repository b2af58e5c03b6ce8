package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/progdex/ai"
	"github.com/poiesic/progdex/core"
	"github.com/poiesic/progdex/storage"
	"github.com/poiesic/progdex/synth"
)

// DefaultBatchSize is the number of documents embedded and committed per
// batch. Small batches bound the payload of one embedding call and limit how
// much work a failing batch throws away.
const DefaultBatchSize = 10

// Loader drives full-collection construction: synthesis, embedding, and
// batched durable writes. Batches are committed strictly in row order; the
// first failing batch aborts the rebuild with everything before it intact.
type Loader struct {
	repo       storage.CollectionRepository
	embedder   ai.Embedder
	collection string
	batchSize  int
	recreate   bool
	pool       *ants.Pool
	progress   ProgressReporter
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithBatchSize sets the number of documents per batch.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		l.batchSize = size
		return nil
	}
}

// WithRecreate controls whether Rebuild destroys an existing collection
// before loading. Default is true, matching the source tool's destructive
// rebuild; with false, Rebuild upserts over an existing compatible
// collection instead.
func WithRecreate(recreate bool) Option {
	return func(l *Loader) error {
		l.recreate = recreate
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent synthesis.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		if l.pool != nil {
			l.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// WithProgress sets a progress reporter for bulk loads.
// Default is no reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(l *Loader) error {
		if progress == nil {
			progress = nopProgress{}
		}
		l.progress = progress
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a batch loader bound to one target collection.
func NewLoader(
	repo storage.CollectionRepository,
	embedder ai.Embedder,
	collection string,
	opts ...Option,
) (*Loader, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		repo:       repo,
		embedder:   embedder,
		collection: collection,
		batchSize:  DefaultBatchSize,
		recreate:   true,
		pool:       pool,
		progress:   nopProgress{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}

	return l, nil
}

// Rebuild (re)builds the target collection from the full dataset. Rows are
// synthesized (concurrently; output order stays the row order), partitioned
// into fixed-size batches, and each batch is embedded and committed in turn.
// On a batch failure Rebuild stops immediately and returns a *BatchError;
// the returned stats always report how many items were committed. Rebuild
// is idempotent in its default destructive mode because it starts by
// recreating the collection.
func (l *Loader) Rebuild(ctx context.Context, rows []core.ProgramRow) (core.RebuildStats, error) {
	stats := core.RebuildStats{
		TotalRows:    len(rows),
		TotalBatches: (len(rows) + l.batchSize - 1) / l.batchSize,
		FailedBatch:  -1,
	}

	if l.recreate {
		if _, err := l.repo.RecreateCollection(ctx, l.collection, l.embedder.Identity()); err != nil {
			return stats, err
		}
	} else {
		if _, err := l.repo.EnsureCollection(ctx, l.collection, l.embedder.Identity()); err != nil {
			return stats, err
		}
	}

	docs := l.synthesizeAll(rows)

	l.logger.Info("rebuilding collection",
		"collection", l.collection,
		"rows", len(rows),
		"batches", stats.TotalBatches,
		"batchSize", l.batchSize)
	l.progress.Start(len(docs))
	defer l.progress.Finish()

	for start := 0; start < len(docs); start += l.batchSize {
		end := min(start+l.batchSize, len(docs))
		batch := docs[start:end]
		batchIndex := start / l.batchSize

		if err := l.loadBatch(ctx, batch, batchIndex, &stats); err != nil {
			stats.FailedBatch = batchIndex
			l.logger.Error("rebuild aborted",
				"collection", l.collection,
				"batch", batchIndex,
				"committed", stats.CommittedItems,
				"err", err)
			return stats, err
		}

		stats.CommittedItems += len(batch)
		stats.CommittedBatches++
		l.progress.Increment(len(batch))
	}

	l.logger.Info("rebuild complete",
		"collection", l.collection,
		"items", stats.CommittedItems)
	return stats, nil
}

// loadBatch embeds one batch and commits it as a single durable write.
func (l *Loader) loadBatch(ctx context.Context, batch []core.ProgramDocument, batchIndex int, stats *core.RebuildStats) error {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Text
	}

	vectors, err := l.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return &BatchError{Batch: batchIndex, Stage: StageEmbedding, Committed: stats.CommittedItems, Err: err}
	}
	if len(vectors) != len(texts) {
		err := fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
		return &BatchError{Batch: batchIndex, Stage: StageEmbedding, Committed: stats.CommittedItems, Err: err}
	}

	entries := make([]storage.Entry, len(batch))
	for i, doc := range batch {
		entries[i] = storage.Entry{
			ID:       doc.ID,
			Document: doc.Text,
			Metadata: doc.Metadata,
			Vector:   ai.NormalizeVector(vectors[i]),
		}
	}

	if err := l.repo.UpsertBatch(ctx, l.collection, entries); err != nil {
		return &BatchError{Batch: batchIndex, Stage: StageStorage, Committed: stats.CommittedItems, Err: err}
	}
	return nil
}

// synthesizeAll synthesizes every row through the worker pool. Synthesis is
// pure, so fan-out is safe; each worker writes its own slot and row order is
// preserved.
func (l *Loader) synthesizeAll(rows []core.ProgramRow) []core.ProgramDocument {
	docs := make([]core.ProgramDocument, len(rows))

	var wg sync.WaitGroup
	for i := range rows {
		wg.Add(1)
		row, index := rows[i], i
		err := l.pool.Submit(func() {
			defer wg.Done()
			docs[index] = synth.Synthesize(row, index)
		})
		if err != nil {
			// Pool rejected the task (released or overloaded); synthesize
			// inline rather than losing the row.
			docs[index] = synth.Synthesize(row, index)
			wg.Done()
		}
	}
	wg.Wait()

	return docs
}

// Release releases the synthesis worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
