package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "nested"), 0)
	require.NoError(t, err)

	_, ok := c.Get("PMC1")
	assert.False(t, ok)

	require.NoError(t, c.Set("PMC1", []byte("hello")))
	data, ok := c.Get("PMC1")
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))
}

func TestCache_TTL(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", []byte("v")))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, c.key("k")), old, old))

	_, ok := c.Get("k")
	assert.False(t, ok, "expired entry should miss")

	noExpiry, err := NewCache(dir, 0)
	require.NoError(t, err)
	_, ok = noExpiry.Get("k")
	assert.True(t, ok, "ttl 0 should never expire")
}

func TestCache_JSON(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	require.NoError(t, err)

	type entry struct {
		Text string `json:"text"`
	}
	require.NoError(t, c.SetJSON("a", entry{Text: "x"}))

	var got entry
	require.True(t, c.GetJSON("a", &got))
	assert.Equal(t, "x", got.Text)

	// Corrupt entries are dropped
	require.NoError(t, c.Set("b", []byte("{not json")))
	assert.False(t, c.GetJSON("b", &got))
	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(k, []byte(k)))
	}
	require.NoError(t, c.Delete("c"))
	require.NoError(t, c.Delete("missing"))

	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok := c.Get("a")
	assert.False(t, ok)
}
