package gcs_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/notice-scraper/internal/storage/gcs"
)

// newTestStore creates a BlobStore pointed at a test server.
func newTestStore(t *testing.T, handler http.Handler, prefix string) *gcs.BlobStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := gcs.New(client, gcs.Config{Bucket: "test-bucket", Prefix: prefix})
	require.NoError(t, err)
	return store
}

func TestNewValidation(t *testing.T) {
	_, err := gcs.New(nil, gcs.Config{Bucket: "b"})
	assert.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()
	_, err = gcs.New(client, gcs.Config{})
	assert.Error(t, err)
}

func TestMirrorUploadsFile(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(localPath, []byte("png-bytes"), 0o600))

	var gotName string
	var gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/b/test-bucket/o")
		gotName = r.URL.Query().Get("name")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)
		fmt.Fprintln(w, `{ "name": "`+gotName+`", "bucket": "test-bucket" }`)
	})

	store := newTestStore(t, handler, "/notices/")
	uri, err := store.Mirror(context.Background(), "726/photo.png", localPath)
	require.NoError(t, err)

	assert.Equal(t, "gs://test-bucket/notices/726/photo.png", uri)
	assert.Equal(t, "notices/726/photo.png", gotName)
	assert.True(t, strings.Contains(gotBody, "png-bytes"))
}

func TestMirrorMissingFile(t *testing.T) {
	store := newTestStore(t, http.NotFoundHandler(), "")
	_, err := store.Mirror(context.Background(), "1/a.png", filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestPutObjectServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	store := newTestStore(t, handler, "")
	_, err := store.PutObject(context.Background(), "1/a.txt", "text/plain", strings.NewReader("data"))
	assert.Error(t, err)
}

func TestPutObjectEmptyPath(t *testing.T) {
	store := newTestStore(t, http.NotFoundHandler(), "")
	_, err := store.PutObject(context.Background(), " ", "", strings.NewReader("x"))
	assert.Error(t, err)
}
