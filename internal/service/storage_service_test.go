package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"unilearn_backend/internal/config"
	"unilearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	root := t.TempDir()
	store := NewObjectStore(context.Background(), &config.StorageConfig{Type: util.StorageLocal, LocalPath: root})
	require.IsType(t, &diskStore{}, store)
	ctx := context.Background()

	url, err := store.Put(ctx, "covers/a.png", strings.NewReader("png bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/covers/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "covers", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	require.NoError(t, store.Remove(ctx, "covers/a.png"))
	_, err = os.Stat(filepath.Join(root, "covers", "a.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(ctx, "covers/a.png"), "removing twice is fine")

	for _, key := range []string{"../evil.png", "/etc/passwd", "..", ""} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), 1, "image/png")
		assert.ErrorIs(t, err, errBadObjectKey, key)
	}
}
