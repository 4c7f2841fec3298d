package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "notice-scraper", root.Use)
	require.NotNil(t, root.PersistentFlags().Lookup("config"))

	sub, _, err := root.Find([]string{"scrape"})
	require.NoError(t, err)
	assert.Equal(t, "scrape", sub.Name())
}

func TestRootRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scrape:\n  max_pages: 50\n"), 0o600))

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"scrape", "--config", path})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.max_pages")
}

func TestLoadRuntimeMissingFile(t *testing.T) {
	_, _, err := loadRuntime(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
