package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/progdex/storage"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store")
	backend, err := OpenBackend(path, false)
	require.NoError(t, err)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestWithTxReadWrite(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set([]byte("key"), []byte("value")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		item, err := tx.Get([]byte("key"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("value"), val)
			return nil
		})
	}, false)
	require.NoError(t, err)
}

func TestWithTxDiscardsOnError(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	boom := errors.New("boom")
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set([]byte("discarded"), []byte("x")); err != nil {
			return err
		}
		return boom
	}, true)
	require.ErrorIs(t, err, boom)

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		_, err := tx.Get([]byte("discarded"))
		assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)
		return nil
	}, false)
	require.NoError(t, err)
}

func TestDropPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		require.NoError(t, tx.Set([]byte("a:1"), []byte("x")))
		require.NoError(t, tx.Set([]byte("a:2"), []byte("y")))
		require.NoError(t, tx.Set([]byte("b:1"), []byte("z")))
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	require.NoError(t, backend.DropPrefix([]byte("a:")))

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		_, err := tx.Get([]byte("a:1"))
		assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)
		_, err = tx.Get([]byte("b:1"))
		assert.NoError(t, err)
		return nil
	}, false)
	require.NoError(t, err)

	// Dropping a prefix with no keys is a no-op.
	require.NoError(t, backend.DropPrefix([]byte("missing:")))
}

func TestClosedBackendRejectsOperations(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.WithTx(func(tx *badgerdb.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = backend.DropPrefix([]byte("a:"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	repo := NewRepositoryWithBackend(backend)
	_, err = repo.Count(context.Background(), "programs")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestValidCollectionName(t *testing.T) {
	valid := []string{"programs", "cs-programs", "programs_2026", "A1"}
	for _, name := range valid {
		assert.True(t, validCollectionName(name), name)
	}

	invalid := []string{"", "has space", "has:colon", "中文", "a/b"}
	for _, name := range invalid {
		assert.False(t, validCollectionName(name), name)
	}
}
