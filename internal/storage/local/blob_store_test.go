// Package local_test tests the local filesystem blob store.
package local_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/notice-scraper/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		tempDir := t.TempDir()
		store, err := local.New(local.Config{BaseDir: tempDir})
		require.NoError(t, err)
		assert.Equal(t, tempDir, store.BaseDir())
	})

	t.Run("CreatesMissingDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "migration_assets")
		_, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		tempFile, err := os.CreateTemp(t.TempDir(), "testfile")
		require.NoError(t, err)
		require.NoError(t, tempFile.Close())

		_, err = local.New(local.Config{BaseDir: tempFile.Name()})
		assert.Error(t, err)
	})
}

func TestEnsureDir(t *testing.T) {
	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	dir, err := store.EnsureDir(context.Background(), "726")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "726"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = store.EnsureDir(context.Background(), "../escape")
	assert.Error(t, err)
}

func TestPutObject(t *testing.T) {
	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	t.Run("ValidPut", func(t *testing.T) {
		data := []byte("hello world")
		got, err := store.PutObject(context.Background(), "1/object.txt", "text/plain", bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "1", "object.txt"), got)

		// #nosec G304 -- test reads from the controlled temp directory.
		readData, err := os.ReadFile(got)
		require.NoError(t, err)
		assert.Equal(t, data, readData)
	})

	t.Run("LargeBodyStreams", func(t *testing.T) {
		data := bytes.Repeat([]byte("x"), 3*8192+17)
		got, err := store.PutObject(context.Background(), "2/big.bin", "", bytes.NewReader(data))
		require.NoError(t, err)
		info, err := os.Stat(got)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), info.Size())
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "", "text/plain", strings.NewReader("data"))
		assert.Error(t, err)
	})

	t.Run("PathTraversal", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "../../etc/passwd", "", strings.NewReader("x"))
		assert.Error(t, err)
	})

	t.Run("ReadFailureRemovesPartialFile", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "3/broken.bin", "", failingReader{})
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(tempDir, "3", "broken.bin"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.PutObject(ctx, "4/x.txt", "", strings.NewReader("x"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}
