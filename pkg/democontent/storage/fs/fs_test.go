package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/demo-content/pkg/democontent"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp, URLPrefix: "/media/"})
	require.NoError(t, err)

	ctx := context.Background()
	key := "0b5f/photo.jpg"
	data := []byte("hello fs")

	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader(data), "image/jpeg"))

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	url, err := backend.PublicURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/media/0b5f/photo.jpg", url)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(tmp, key))
	assert.True(t, os.IsNotExist(err), "expected file removed, stat err=%v", err)

	// the emptied key directory goes too
	_, err = os.Stat(filepath.Join(tmp, "0b5f"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, backend.Delete(ctx, key), democontent.ErrObjectNotFound)
	_, err = backend.Download(ctx, key)
	assert.ErrorIs(t, err, democontent.ErrObjectNotFound)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../outside.txt", "/etc/passwd", "a/../../b"} {
		err := backend.Upload(ctx, key, bytes.NewReader([]byte("x")), "text/plain")
		assert.ErrorIs(t, err, democontent.ErrInvalidObjectKey, "key %q", key)
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.EqualError(t, err, "base directory is required")
}
