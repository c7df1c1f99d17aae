package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/storage"
)

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewFileStore_MissingRoot(t *testing.T) {
	_, err := storage.NewFileStore(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFileStore_StringRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.UploadFromString(ctx, "batch-output", "processed_a.json", `{"ok":true}`, false))

	got, err := store.DownloadToString(ctx, "batch-output", "processed_a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got)

	exists, err := store.Exists(ctx, "batch-output", "processed_a.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileStore_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	local := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(local, []byte(`{"batch_id":"b"}`), 0644))

	require.NoError(t, store.UploadFromFile(ctx, "batch-input", "2024/01/batch.json", local, false))

	target := filepath.Join(t.TempDir(), "work", "input.json")
	require.NoError(t, store.DownloadToFile(ctx, "batch-input", "2024/01/batch.json", target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, `{"batch_id":"b"}`, string(data))
}

func TestFileStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.UploadFromString(ctx, "c", "a.json", "one", false))

	err := store.UploadFromString(ctx, "c", "a.json", "two", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	require.NoError(t, store.UploadFromString(ctx, "c", "a.json", "three", true))
	got, err := store.DownloadToString(ctx, "c", "a.json")
	require.NoError(t, err)
	assert.Equal(t, "three", got)
}

func TestFileStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.DownloadToString(ctx, "c", "missing.json")
	assert.True(t, errors.IsNotFound(err))

	err = store.DownloadToFile(ctx, "c", "missing.json", filepath.Join(t.TempDir(), "x"))
	assert.True(t, errors.IsNotFound(err))

	exists, err := store.Exists(ctx, "c", "missing.json")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.List(ctx, "nope", "")
	assert.True(t, errors.IsNotFound(err))
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for _, name := range []string{"logs/job1/t2.json", "logs/job1/t1.json", "logs/errors/job1/t3_error.json", "other.json"} {
		require.NoError(t, store.UploadFromString(ctx, "batch-logs", name, "{}", false))
	}

	all, err := store.List(ctx, "batch-logs", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/errors/job1/t3_error.json", "logs/job1/t1.json", "logs/job1/t2.json", "other.json"}, all)

	job, err := store.List(ctx, "batch-logs", "logs/job1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/job1/t1.json", "logs/job1/t2.json"}, job)
}

func TestFileStore_NamesStayInsideContainer(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.UploadFromString(ctx, "c", "../../escape.json", "x", false))

	_, err := os.Stat(filepath.Join(store.Root(), "c", "escape.json"))
	assert.NoError(t, err)

	assert.Error(t, store.UploadFromString(ctx, "../c", "a.json", "x", false))
	assert.Error(t, store.UploadFromString(ctx, "c", "", "x", false))
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := newStore(t)

	err := store.UploadFromString(ctx, "c", "a.json", "x", false)
	assert.ErrorIs(t, err, context.Canceled)
}
