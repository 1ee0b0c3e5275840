package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRef(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}\.png$`), NewRef("Logo.PNG"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), NewRef("logo"))
	assert.NotEqual(t, NewRef("a.jpg"), NewRef("a.jpg"))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	ref, err := store.Store(ctx, "logo.jpg", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(store.Dir(), ref))

	rc, err := store.Fetch(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	assert.ErrorIs(t, store.Delete(ctx, ref), ErrNotFound)
	_, err = store.Fetch(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsEscapingRefs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0644))

	for _, ref := range []string{"", ".", "..", "../secret.txt", `..\secret.txt`} {
		_, err := store.Fetch(ctx, ref)
		assert.ErrorIs(t, err, ErrNotFound, ref)
		assert.ErrorIs(t, store.Delete(ctx, ref), ErrNotFound, ref)
	}
	assert.FileExists(t, filepath.Join(dir, "secret.txt"))
}

func TestLocalStoreHonoursCancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Store(ctx, "logo.png", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContentTypeForRef(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeForRef("abc.png"))
	assert.Equal(t, "image/jpeg", contentTypeForRef("abc.jpg"))
	assert.Equal(t, "image/jpeg", contentTypeForRef("abc.jpeg"))
}
