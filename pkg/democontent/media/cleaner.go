package media

import (
	"context"
	"errors"

	"github.com/tendant/demo-content/pkg/democontent"
)

// Cleaner deletes the files a Sideloader stored for an attachment.
type Cleaner struct {
	store democontent.BlobStore
}

var _ democontent.MediaCleaner = (*Cleaner)(nil)

// NewCleaner creates a cleaner for store
func NewCleaner(store democontent.BlobStore) *Cleaner {
	return &Cleaner{store: store}
}

// RemoveMedia deletes the original and the thumbnail. Files already gone are
// not an error.
func (c *Cleaner) RemoveMedia(ctx context.Context, item *democontent.Item) error {
	var errs []error
	for _, attr := range []string{AttrFile, AttrThumbnailFile} {
		key := item.Attributes[attr]
		if key == "" {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil && !errors.Is(err, democontent.ErrObjectNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
