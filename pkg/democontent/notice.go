package democontent

import (
	"errors"
	"fmt"
)

// ImportNotice is the admin summary of a successful import.
func ImportNotice(result ImportResult) string {
	return fmt.Sprintf("Imported: %d pages, %d posts, %d images. Menu assigned.",
		result.PagesCreated, result.PostsCreated, result.ImagesImported)
}

// RemovalNotice is the admin summary of a removal.
func RemovalNotice(removed int) string {
	return fmt.Sprintf("Removed %d demo items (pages, posts, attachments, and menu if created).", removed)
}

// ErrorNotice is the admin message for a failed run.
func ErrorNotice(err error) string {
	if errors.Is(err, ErrPermissionDenied) {
		return "Insufficient permissions."
	}
	return err.Error()
}
