package democontent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Catalog is the fixed demo data set an import provisions.
type Catalog struct {
	Images          []ImageSpec    `json:"images"`
	Pages           []PageSpec     `json:"pages"`
	Categories      []CategorySpec `json:"categories"`
	PostCount       int            `json:"post_count"`
	PostTitleFormat string         `json:"post_title_format"`
	MenuName        string         `json:"menu_name"`
	MenuPageSlugs   []string       `json:"menu_page_slugs"`
	HomeSlug        string         `json:"home_slug"`
	BlogSlug        string         `json:"blog_slug"`
}

// DefaultCatalog returns the stock demo data set.
func DefaultCatalog() Catalog {
	images := make([]ImageSpec, 0, 6)
	for i := 1; i <= 6; i++ {
		images = append(images, ImageSpec{
			URL:   fmt.Sprintf("https://picsum.photos/seed/sparti-%d/1600/900", i),
			Title: fmt.Sprintf("Sparti Demo Image %d", i),
		})
	}

	return Catalog{
		Images: images,
		Pages: []PageSpec{
			{Title: "Home", Slug: "home"},
			{Title: "About", Slug: "about"},
			{Title: "Services", Slug: "services"},
			{Title: "Contact", Slug: "contact"},
			{Title: "Blog", Slug: "blog"},
		},
		Categories: []CategorySpec{
			{Slug: "news", Name: "News"},
			{Slug: "updates", Name: "Updates"},
		},
		PostCount:       5,
		PostTitleFormat: "Demo Post %d",
		MenuName:        "Primary",
		MenuPageSlugs:   []string{"home", "about", "services", "contact", "blog"},
		HomeSlug:        "home",
		BlogSlug:        "blog",
	}
}

// LoadCatalog decodes a JSON catalog. Fields absent from the document keep
// their DefaultCatalog values.
func LoadCatalog(r io.Reader) (Catalog, error) {
	catalog := DefaultCatalog()
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Validate checks the catalog for values the import cannot work with.
func (c Catalog) Validate() error {
	if c.PostCount < 0 {
		return errors.New("post_count must not be negative")
	}
	if c.PostCount > 0 && !singleIntVerb(c.PostTitleFormat) {
		return errors.New("post_title_format must contain exactly one %d and no other verbs")
	}
	if c.MenuName == "" {
		return errors.New("menu_name is required")
	}

	seen := make(map[string]bool, len(c.Pages))
	for _, page := range c.Pages {
		if page.Slug == "" || page.Title == "" {
			return fmt.Errorf("page %q requires both title and slug", page.Title)
		}
		if seen[page.Slug] {
			return fmt.Errorf("duplicate page slug %q", page.Slug)
		}
		seen[page.Slug] = true
	}
	for _, category := range c.Categories {
		if category.Slug == "" || category.Name == "" {
			return fmt.Errorf("category %q requires both name and slug", category.Name)
		}
	}
	return nil
}

// PostTitle returns the generated title of the n-th demo post (1-based).
func (c Catalog) PostTitle(n int) string {
	return fmt.Sprintf(c.PostTitleFormat, n)
}

// singleIntVerb reports whether format has exactly one verb and that verb is
// a bare %d. Escaped percent signs are allowed.
func singleIntVerb(format string) bool {
	verbs := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return false
		}
		i++
		switch format[i] {
		case '%':
		case 'd':
			verbs++
		default:
			return false
		}
	}
	return verbs == 1
}
