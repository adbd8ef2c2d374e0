package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/demo-content/pkg/democontent"
	memorystorage "github.com/tendant/demo-content/pkg/democontent/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New("/media/")
	ctx := context.Background()
	testKey := "abc/photo.jpg"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testKey, strings.NewReader(testData), "image/jpeg")
		assert.NoError(t, err)

		mimeType, ok := backend.MimeType(testKey)
		assert.True(t, ok)
		assert.Equal(t, "image/jpeg", mimeType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		downloadedData, err := io.ReadAll(reader)
		assert.NoError(t, err)
		assert.Equal(t, testData, string(downloadedData))
	})

	t.Run("PublicURL", func(t *testing.T) {
		url, err := backend.PublicURL(ctx, testKey)
		assert.NoError(t, err)
		assert.Equal(t, "/media/abc/photo.jpg", url)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, democontent.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, testKey), democontent.ErrObjectNotFound)
		assert.Empty(t, backend.Keys())
	})
}
