package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir)
	require.NoError(t, err)

	content := []byte("<div></div>\n")

	t.Run("NotFound", func(t *testing.T) {
		assert.False(t, c.IsFormatted("missing.canvas", content, "opts"))
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		c.MarkFormatted("a.canvas", content, "opts")
		assert.True(t, c.IsFormatted("a.canvas", content, "opts"))
		require.NoError(t, c.Save())

		reloaded, err := New(dir)
		require.NoError(t, err)
		assert.True(t, reloaded.IsFormatted("a.canvas", content, "opts"))
	})

	t.Run("ContentChanged", func(t *testing.T) {
		c.MarkFormatted("b.canvas", content, "opts")
		assert.False(t, c.IsFormatted("b.canvas", []byte("<p></p>\n"), "opts"))
		assert.False(t, c.IsFormatted("b.canvas", content, "opts"), "a stale entry is dropped")
	})

	t.Run("OptionsChanged", func(t *testing.T) {
		c.MarkFormatted("c.canvas", content, "opts")
		assert.False(t, c.IsFormatted("c.canvas", content, "other"))
	})
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.SetMaxAge(time.Hour)

	c.MarkFormatted("a.canvas", []byte("x"), "o")
	now = now.Add(30 * time.Minute)
	assert.True(t, c.IsFormatted("a.canvas", []byte("x"), "o"))
	now = now.Add(time.Hour)
	assert.False(t, c.IsFormatted("a.canvas", []byte("x"), "o"))
}

func TestInvalidateAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	c.MarkFormatted("a.canvas", []byte("x"), "o")
	c.MarkFormatted("b.canvas", []byte("y"), "o")
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.InvalidateAll())
	assert.Equal(t, 0, c.Len())

	_, err = os.Stat(filepath.Join(dir, fileName))
	assert.NoError(t, err)
}

func TestCorruptCacheFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("not gob"), 0o644))
	_, err := New(dir)
	assert.Error(t, err)
}
