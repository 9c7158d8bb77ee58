package common

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/pmc2md/models"
)

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.DataDir = dir
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.DBPath = filepath.Join(dir, "cache", "test.db")
	cfg.Concurrency = 4

	app, err := Build(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, cfg.DBPath, app.DB.Path())
	assert.Equal(t, dir, app.Storage.Root())
	assert.Equal(t, filepath.Join(dir, "cache", "supplements"), app.SupplementCache.Path())
	require.NotNil(t, app.Downloader)
	assert.Equal(t, 4, app.Downloader.Gate.Size())
	assert.Equal(t, 4, app.Downloader.Workers)
	assert.FileExists(t, cfg.DBPath)
}
