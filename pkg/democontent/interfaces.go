package democontent

import (
	"context"
	"io"
)

// Repository defines the content repository the provisioner writes to.
type Repository interface {
	// Item operations. CreateItem assigns item.ID.
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
	FindItems(ctx context.Context, query ItemQuery) ([]*Item, error)

	// Taxonomy operations
	GetTermBySlug(ctx context.Context, taxonomy, slug string) (*Term, error)
	CreateTerm(ctx context.Context, term *Term) error

	// Menu operations
	GetMenu(ctx context.Context, id int64) (*Menu, error)
	GetMenuByName(ctx context.Context, name string) (*Menu, error)
	CreateMenu(ctx context.Context, menu *Menu) error
	DeleteMenu(ctx context.Context, id int64) error
	ListMenuItems(ctx context.Context, menuID int64) ([]*MenuItem, error)
	AddMenuItem(ctx context.Context, item *MenuItem) error
}

// Settings is the site-wide key/value store.
type Settings interface {
	// GetOption returns ErrOptionNotFound when key is unset.
	GetOption(ctx context.Context, key string) (string, error)
	SetOption(ctx context.Context, key, value string) error
	DeleteOption(ctx context.Context, key string) error

	// GetMenuLocations returns the slot -> menu ID mapping.
	GetMenuLocations(ctx context.Context) (map[string]int64, error)
	SetMenuLocations(ctx context.Context, locations map[string]int64) error
}

// Sideloader fetches a remote resource and registers it as an attachment.
type Sideloader interface {
	Sideload(ctx context.Context, req SideloadRequest) (*Item, error)
}

// MediaCleaner removes the stored files behind an attachment.
type MediaCleaner interface {
	RemoveMedia(ctx context.Context, item *Item) error
}

// ThemeLocations lists the menu slots the active theme declares, in
// declaration order.
type ThemeLocations interface {
	MenuLocations(ctx context.Context) ([]MenuLocation, error)
}

// Authorizer answers whether the actor behind ctx holds a capability.
type Authorizer interface {
	Can(ctx context.Context, capability string) bool
}

// EventSink receives provisioning events.
type EventSink interface {
	ItemCreated(ctx context.Context, item *Item) error
	ItemDeleted(ctx context.Context, item *Item) error
	MenuCreated(ctx context.Context, menu *Menu) error
	MenuDeleted(ctx context.Context, menuID int64) error
	ImportCompleted(ctx context.Context, result ImportResult) error
	RemovalCompleted(ctx context.Context, removed int) error
}

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Upload stores the content of reader under key
	Upload(ctx context.Context, key string, reader io.Reader, mimeType string) error

	// Download returns the content stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content stored under key
	Delete(ctx context.Context, key string) error

	// PublicURL returns the URL pages should embed for key
	PublicURL(ctx context.Context, key string) (string, error)
}
