package badger

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/progdex/core"
	"github.com/poiesic/progdex/storage"
)

// Repository implements storage.CollectionRepository for BadgerDB.
type Repository struct {
	backend *Backend
}

var _ storage.CollectionRepository = (*Repository)(nil)

// NewRepository opens a collection repository backed by BadgerDB under the
// given path, creating the directory if needed.
//
// Returns storage.CollectionRepository interface to enforce abstraction.
func NewRepository(path string) (storage.CollectionRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &Repository{backend: backend}, nil
}

// NewRepositoryWithBackend wraps an already-open backend. The caller retains
// ownership of the backend's lifecycle.
func NewRepositoryWithBackend(backend *Backend) *Repository {
	return &Repository{backend: backend}
}

// Close closes the underlying backend.
func (r *Repository) Close() error {
	return r.backend.Close()
}

// EnsureCollection opens the named collection, creating it if absent.
func (r *Repository) EnsureCollection(ctx context.Context, name, embedderID string) (storage.CollectionInfo, error) {
	if !validCollectionName(name) {
		return storage.CollectionInfo{}, fmt.Errorf("%w: %q", storage.ErrInvalidCollectionName, name)
	}

	var info storage.CollectionInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readInfo(tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Embedder != embedderID {
				return fmt.Errorf("%w: collection %q was built with %q, opened with %q",
					storage.ErrEmbedderMismatch, name, existing.Embedder, embedderID)
			}
			info = *existing
			return nil
		}

		info = storage.CollectionInfo{
			Name:      name,
			Embedder:  embedderID,
			CreatedAt: time.Now().UTC(),
		}
		if err := writeInfo(tx, &info); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return info, err
}

// RecreateCollection deletes any existing collection of that name and
// creates a fresh, empty one. Absence of the old collection is not an error.
func (r *Repository) RecreateCollection(ctx context.Context, name, embedderID string) (storage.CollectionInfo, error) {
	if !validCollectionName(name) {
		return storage.CollectionInfo{}, fmt.Errorf("%w: %q", storage.ErrInvalidCollectionName, name)
	}

	// Drop only the entry keyspace; the terminating separator keeps
	// collections with a shared name prefix apart. The manifest is a single
	// exact key and is overwritten below, so the previous generation's
	// manifest never needs a prefix drop. Dropping an absent prefix is a
	// no-op.
	if err := r.backend.DropPrefix(makeDocScanPrefix(name)); err != nil {
		return storage.CollectionInfo{}, err
	}

	info := storage.CollectionInfo{
		Name:      name,
		Embedder:  embedderID,
		CreatedAt: time.Now().UTC(),
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := writeInfo(tx, &info); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return info, err
}

// HasCollection reports whether the named collection exists.
func (r *Repository) HasCollection(ctx context.Context, name string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		info, err := readInfo(tx, name)
		if err != nil {
			return err
		}
		found = info != nil
		return nil
	}, false)
	return found, err
}

// CollectionInfo returns the manifest of the named collection.
func (r *Repository) CollectionInfo(ctx context.Context, name string) (storage.CollectionInfo, error) {
	var info storage.CollectionInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readInfo(tx, name)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: %q", storage.ErrCollectionNotFound, name)
		}
		info = *existing
		return nil
	}, false)
	return info, err
}

// ListCollections returns the names of all collections, sorted.
func (r *Repository) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	prefix := []byte(collectionMetaPrefix + ":")

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			names = append(names, string(key[len(prefix):]))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

// DeleteCollection removes the named collection and all its entries. The
// manifest is deleted by its exact key; a prefix drop would also hit the
// manifests of collections whose names extend this one.
func (r *Repository) DeleteCollection(ctx context.Context, name string) error {
	if err := r.backend.DropPrefix(makeDocScanPrefix(name)); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeMetaKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpsertBatch inserts or overwrites entries by id as one transaction: either
// the whole batch commits or none of it does. The first committed batch
// fixes the collection's vector dimension.
func (r *Repository) UpsertBatch(ctx context.Context, name string, entries []storage.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		info, err := readInfo(tx, name)
		if err != nil {
			return err
		}
		if info == nil {
			return fmt.Errorf("%w: %q", storage.ErrCollectionNotFound, name)
		}

		dim := info.Dimension
		for i := range entries {
			entry := &entries[i]
			if dim == 0 {
				dim = len(entry.Vector)
			}
			if len(entry.Vector) != dim {
				return fmt.Errorf("%w: collection %q expects %d, entry %q has %d",
					storage.ErrDimensionMismatch, name, dim, entry.ID, len(entry.Vector))
			}

			value, err := storage.MarshalEntry(entry)
			if err != nil {
				return err
			}
			if err := tx.Set(makeDocKey(name, entry.ID), value); err != nil {
				return err
			}
		}

		if dim != info.Dimension {
			info.Dimension = dim
			if err := writeInfo(tx, info); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// GetByIDs retrieves entries by id. Missing ids are skipped.
func (r *Repository) GetByIDs(ctx context.Context, name string, ids []string) ([]storage.Entry, error) {
	var entries []storage.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeDocKey(name, id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}

			err = item.Value(func(val []byte) error {
				entry, err := storage.UnmarshalEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, *entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetAll returns every entry of the collection, ordered by id.
func (r *Repository) GetAll(ctx context.Context, name string) ([]storage.Entry, error) {
	var entries []storage.Entry
	err := r.scanEntries(name, func(entry *storage.Entry) {
		entries = append(entries, *entry)
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b storage.Entry) int {
		return compareIDs(a.ID, b.ID)
	})
	return entries, nil
}

// Count returns the number of entries in the collection.
func (r *Repository) Count(ctx context.Context, name string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocScanPrefix(name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Search scans the collection, keeps entries the predicate matches, ranks
// them by cosine distance from the query vector ascending, and truncates to
// k. Ties in distance break by ascending id so results are deterministic.
func (r *Repository) Search(ctx context.Context, name string, vector []float32, k int, pred storage.Predicate) ([]core.SearchResult, error) {
	if err := core.ValidateResultCount(k); err != nil {
		return nil, err
	}
	if pred != nil {
		if err := pred.Validate(); err != nil {
			return nil, err
		}
	}

	var results []core.SearchResult
	err := r.scanEntries(name, func(entry *storage.Entry) {
		// Entries without vectors are unreachable by semantic search.
		if len(entry.Vector) == 0 {
			return
		}
		if pred != nil && !pred.Matches(entry.Metadata) {
			return
		}
		results = append(results, core.SearchResult{
			ID:       entry.ID,
			Document: entry.Document,
			Metadata: entry.Metadata,
			Distance: cosineDistance(vector, entry.Vector),
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b core.SearchResult) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return compareIDs(a.ID, b.ID)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// scanEntries iterates all entries of a collection in key order.
func (r *Repository) scanEntries(name string, visit func(*storage.Entry)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocScanPrefix(name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalEntry(val)
				if err != nil {
					return err
				}
				visit(entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}

func readInfo(tx *badger.Txn, name string) (*storage.CollectionInfo, error) {
	item, err := tx.Get(makeMetaKey(name))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var info *storage.CollectionInfo
	err = item.Value(func(val []byte) error {
		info, err = storage.UnmarshalCollectionInfo(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func writeInfo(tx *badger.Txn, info *storage.CollectionInfo) error {
	value, err := storage.MarshalCollectionInfo(info)
	if err != nil {
		return err
	}
	return tx.Set(makeMetaKey(info.Name), value)
}

// compareIDs orders ids numerically when both share a textual prefix and a
// numeric suffix (program_2 before program_10), falling back to byte order.
func compareIDs(a, b string) int {
	pa, na, oka := splitNumericSuffix(a)
	pb, nb, okb := splitNumericSuffix(b)
	if oka && okb && pa == pb {
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
		return 0
	}
	return bytes.Compare([]byte(a), []byte(b))
}

func splitNumericSuffix(s string) (prefix string, n int, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n = 0
	for _, r := range s[i:] {
		n = n*10 + int(r-'0')
	}
	return s[:i], n, true
}

// cosineDistance is 1 minus the cosine similarity of a and b. Zero vectors
// have no direction; their distance to anything is 1 (no similarity).
func cosineDistance(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float32
	for i := 0; i < minLen; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	sim := dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
	return 1 - sim
}
