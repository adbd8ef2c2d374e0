package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/demo-content/pkg/democontent"
)

// Backend is a filesystem implementation of the democontent.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix the files are served under, e.g. /media
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	// Validate and create base directory if it doesn't exist
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   filepath.Clean(config.BaseDir),
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// path maps objectKey below baseDir, rejecting keys that would escape it.
func (b *Backend) path(objectKey string) (string, error) {
	if objectKey == "" || !filepath.IsLocal(filepath.FromSlash(objectKey)) {
		return "", democontent.ErrInvalidObjectKey
	}
	return filepath.Join(b.baseDir, filepath.FromSlash(objectKey)), nil
}

// Upload uploads content directly to the filesystem. The MIME type is
// derived from the file extension on read.
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	// Create directory structure if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &democontent.StorageError{Backend: "fs", Key: objectKey, Op: "upload", Err: err}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return &democontent.StorageError{Backend: "fs", Key: objectKey, Op: "upload", Err: err}
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return &democontent.StorageError{Backend: "fs", Key: objectKey, Op: "upload", Err: err}
	}

	return nil
}

// Download downloads content directly from the filesystem
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, democontent.ErrObjectNotFound
	} else if err != nil {
		return nil, &democontent.StorageError{Backend: "fs", Key: objectKey, Op: "download", Err: err}
	}

	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return democontent.ErrObjectNotFound
		}
		return &democontent.StorageError{Backend: "fs", Key: objectKey, Op: "delete", Err: err}
	}

	// Clean up empty directories
	b.cleanupEmptyDirectories(filepath.Dir(filePath))

	return nil
}

// PublicURL returns the prefixed key
func (b *Backend) PublicURL(ctx context.Context, objectKey string) (string, error) {
	return b.urlPrefix + "/" + objectKey, nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir || !strings.HasPrefix(dir, b.baseDir) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
