package democontent

import "time"

// ContentType is the kind of an item stored in the repository.
type ContentType string

// Content type constants (typed).
const (
	ContentTypePage       ContentType = "page"
	ContentTypePost       ContentType = "post"
	ContentTypeAttachment ContentType = "attachment"
)

// ItemStatus is the publication state of an item.
type ItemStatus string

// Item status constants (typed).
const (
	StatusPublish ItemStatus = "publish"
	StatusDraft   ItemStatus = "draft"
	StatusPrivate ItemStatus = "private"
	StatusInherit ItemStatus = "inherit"
	StatusTrash   ItemStatus = "trash"
)

const (
	// CapabilityManageOptions is required to import or remove demo content.
	CapabilityManageOptions = "manage_options"

	// MarkerAttribute tags every item created by the provisioner.
	MarkerAttribute = "_sparti_demo"
	MarkerValue     = "1"

	// SourceURLAttribute records the remote URL an attachment was sideloaded from.
	SourceURLAttribute = "_sparti_source_url"

	// MenuOption holds the ID of the menu the first import used.
	MenuOption = "sparti_demo_menu_id"

	OptionShowOnFront  = "show_on_front"
	OptionPageOnFront  = "page_on_front"
	OptionPageForPosts = "page_for_posts"

	TaxonomyCategory = "category"
)

// Item is a page, post or media attachment in the content repository.
type Item struct {
	ID              int64             `json:"id"`
	Type            ContentType       `json:"type"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug,omitempty"`
	Status          ItemStatus        `json:"status"`
	Content         string            `json:"content,omitempty"`
	MimeType        string            `json:"mime_type,omitempty"`
	URL             string            `json:"url,omitempty"`
	FeaturedMediaID int64             `json:"featured_media_id,omitempty"`
	TermIDs         []int64           `json:"term_ids,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsDemo reports whether the item carries the demo marker.
func (i *Item) IsDemo() bool {
	return i != nil && i.Attributes[MarkerAttribute] == MarkerValue
}

// Term is a flat taxonomy term such as a category.
type Term struct {
	ID       int64  `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// Menu is a named navigation menu.
type Menu struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MenuItem is one ordered entry of a menu linking to a content object.
type MenuItem struct {
	ID       int64      `json:"id"`
	MenuID   int64      `json:"menu_id"`
	ObjectID int64      `json:"object_id"`
	Object   string     `json:"object"`
	Type     string     `json:"type"`
	Status   ItemStatus `json:"status"`
	Position int        `json:"position"`
}

// MenuLocation is a named slot declared by the active theme.
type MenuLocation struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// ImageSpec describes a remote image to sideload.
type ImageSpec struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// PageSpec describes a demo page.
type PageSpec struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// CategorySpec describes a demo category.
type CategorySpec struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ImportedImage is an image available to page and post templates. The zero
// value is the placeholder used when no image could be imported.
type ImportedImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	ImagesImported   int    `json:"images_imported"`
	PagesCreated     int    `json:"pages_created"`
	PostsCreated     int    `json:"posts_created"`
	ImagesReused     int    `json:"images_reused"`
	PagesReused      int    `json:"pages_reused"`
	PostsSkipped     int    `json:"posts_skipped"`
	MenuItemsCreated int    `json:"menu_items_created"`
	MenuID           int64  `json:"menu_id,omitempty"`
	MenuLocation     string `json:"menu_location,omitempty"`
}
