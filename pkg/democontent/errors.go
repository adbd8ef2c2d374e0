package democontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPermissionDenied indicates the actor lacks CapabilityManageOptions
	ErrPermissionDenied = errors.New("insufficient permissions")

	// ErrItemNotFound indicates an item was not found
	ErrItemNotFound = errors.New("item not found")

	// ErrTermNotFound indicates a taxonomy term was not found
	ErrTermNotFound = errors.New("term not found")

	// ErrMenuNotFound indicates a menu was not found
	ErrMenuNotFound = errors.New("menu not found")

	// ErrOptionNotFound indicates a settings option is not set
	ErrOptionNotFound = errors.New("option not found")

	// ErrEmptySourceURL indicates an image spec without a URL
	ErrEmptySourceURL = errors.New("image URL is empty")

	// ErrFetchFailed indicates a remote resource could not be fetched
	ErrFetchFailed = errors.New("fetch failed")

	// ErrObjectNotFound indicates a blob store has nothing under a key
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidObjectKey indicates a blob key that escapes the store
	ErrInvalidObjectKey = errors.New("invalid object key")
)

// ProvisionError is a per-item failure. The provisioner logs it and moves on
// to the next item; it is never returned from RunImport.
type ProvisionError struct {
	Op  string
	Key string
	Err error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision operation %s skipped %q: %v", e.Op, e.Key, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// isNotFound reports whether err is one of the repository lookup misses.
func isNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrTermNotFound) ||
		errors.Is(err, ErrMenuNotFound) ||
		errors.Is(err, ErrOptionNotFound)
}
