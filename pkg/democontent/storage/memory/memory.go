package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/demo-content/pkg/democontent"
)

// Backend is an in-memory implementation of the democontent.BlobStore interface
type Backend struct {
	mu              sync.RWMutex
	objects         map[string][]byte
	objectsMimeType map[string]string
	urlPrefix       string
}

// New creates a new in-memory storage backend. Public URLs are urlPrefix
// joined with the object key.
func New(urlPrefix string) *Backend {
	return &Backend{
		objects:         make(map[string][]byte),
		objectsMimeType: make(map[string]string),
		urlPrefix:       strings.TrimRight(urlPrefix, "/"),
	}
}

// Upload stores content under objectKey
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &democontent.StorageError{Backend: "memory", Key: objectKey, Op: "upload", Err: err}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	b.objectsMimeType[objectKey] = mimeType
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, democontent.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return democontent.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	delete(b.objectsMimeType, objectKey)
	return nil
}

// PublicURL returns the prefixed key
func (b *Backend) PublicURL(ctx context.Context, objectKey string) (string, error) {
	return b.urlPrefix + "/" + objectKey, nil
}

// MimeType returns the type recorded at upload
func (b *Backend) MimeType(objectKey string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	mimeType, exists := b.objectsMimeType[objectKey]
	return mimeType, exists
}

// Keys lists stored keys in sorted order
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
