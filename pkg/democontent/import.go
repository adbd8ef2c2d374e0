package democontent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pageRef records a provisioned page and whether this run created it.
type pageRef struct {
	ID      int64
	Created bool
}

// RunImport provisions the catalog. Every step skips what already exists, so
// running it again converges on the same content without duplicates. Per-item
// failures are logged and skipped; the only error returned is
// ErrPermissionDenied.
func (p *Provisioner) RunImport(ctx context.Context) (ImportResult, error) {
	if !p.authorizer.Can(ctx, CapabilityManageOptions) {
		return ImportResult{}, ErrPermissionDenied
	}

	var result ImportResult

	images := p.provisionImages(ctx, &result)
	pages := p.provisionPages(ctx, images, &result)
	p.configureReading(ctx, pages)
	categories := p.provisionCategories(ctx)
	p.provisionPosts(ctx, images, categories, &result)

	if menuID := p.provisionMenu(ctx, pages, &result); menuID != 0 {
		result.MenuID = menuID
		result.MenuLocation = p.assignMenuLocation(ctx, menuID)
	}

	p.logger.InfoContext(ctx, "Demo content imported",
		"images_imported", result.ImagesImported,
		"pages_created", result.PagesCreated,
		"posts_created", result.PostsCreated,
		"menu_id", result.MenuID,
		"menu_location", result.MenuLocation)
	p.emit("import.completed", p.eventSink.ImportCompleted(ctx, result))

	return result, nil
}

// provisionImages returns the pool templates draw from. The pool is never
// empty: when nothing could be imported it holds a single placeholder.
func (p *Provisioner) provisionImages(ctx context.Context, result *ImportResult) []ImportedImage {
	pool := make([]ImportedImage, 0, len(p.catalog.Images))

	for _, spec := range p.catalog.Images {
		img, created, err := p.importImage(ctx, spec)
		if err != nil {
			p.skip("import_image", spec.URL, err)
			continue
		}
		if img.URL == "" {
			continue
		}
		if created {
			result.ImagesImported++
		} else {
			result.ImagesReused++
		}
		pool = append(pool, img)
	}

	if len(pool) == 0 {
		pool = append(pool, ImportedImage{})
	}
	return pool
}

func (p *Provisioner) importImage(ctx context.Context, spec ImageSpec) (ImportedImage, bool, error) {
	url := strings.TrimSpace(spec.URL)
	if url == "" {
		return ImportedImage{}, false, ErrEmptySourceURL
	}

	existing, err := p.findOne(ctx, ItemQuery{
		Types:      []ContentType{ContentTypeAttachment},
		Statuses:   []ItemStatus{StatusInherit},
		Attributes: map[string]string{SourceURLAttribute: url},
	})
	if err != nil {
		return ImportedImage{}, false, err
	}
	if existing != nil {
		return ImportedImage{ID: existing.ID, URL: existing.URL}, false, nil
	}

	attrs := demoAttributes()
	attrs[SourceURLAttribute] = url
	item, err := p.sideloader.Sideload(ctx, SideloadRequest{URL: url, Title: spec.Title, Attributes: attrs})
	if err != nil {
		return ImportedImage{}, false, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	p.emit("item.created", p.eventSink.ItemCreated(ctx, item))

	return ImportedImage{ID: item.ID, URL: item.URL}, true, nil
}

func (p *Provisioner) provisionPages(ctx context.Context, images []ImportedImage, result *ImportResult) map[string]pageRef {
	pages := make(map[string]pageRef, len(p.catalog.Pages))

	for index, spec := range p.catalog.Pages {
		existing, err := p.findOne(ctx, ItemQuery{
			Types:    []ContentType{ContentTypePage},
			Statuses: []ItemStatus{StatusPublish},
			Slug:     spec.Slug,
		})
		if err != nil {
			p.skip("create_page", spec.Slug, err)
			continue
		}
		if existing != nil {
			pages[spec.Slug] = pageRef{ID: existing.ID}
			result.PagesReused++
			continue
		}

		var content string
		if spec.Slug == p.catalog.HomeSlug {
			content = HomeMarkup(images)
		} else {
			content = PageMarkup(spec.Title, pickImage(images, index))
		}

		page := &Item{
			Type:       ContentTypePage,
			Title:      spec.Title,
			Slug:       spec.Slug,
			Status:     StatusPublish,
			Content:    content,
			Attributes: demoAttributes(),
		}
		if err := p.repository.CreateItem(ctx, page); err != nil {
			p.skip("create_page", spec.Slug, err)
			continue
		}
		p.emit("item.created", p.eventSink.ItemCreated(ctx, page))

		pages[spec.Slug] = pageRef{ID: page.ID, Created: true}
		result.PagesCreated++
	}

	return pages
}

// configureReading points the front page and posts page at the demo pages.
func (p *Provisioner) configureReading(ctx context.Context, pages map[string]pageRef) {
	if home, ok := p.readingPage(pages, p.catalog.HomeSlug); ok {
		if err := p.settings.SetOption(ctx, OptionShowOnFront, "page"); err != nil {
			p.skip("set_option", OptionShowOnFront, err)
		}
		if err := p.settings.SetOption(ctx, OptionPageOnFront, formatID(home.ID)); err != nil {
			p.skip("set_option", OptionPageOnFront, err)
		}
	}
	if blog, ok := p.readingPage(pages, p.catalog.BlogSlug); ok {
		if err := p.settings.SetOption(ctx, OptionPageForPosts, formatID(blog.ID)); err != nil {
			p.skip("set_option", OptionPageForPosts, err)
		}
	}
}

func (p *Provisioner) readingPage(pages map[string]pageRef, slug string) (pageRef, bool) {
	if slug == "" {
		return pageRef{}, false
	}
	ref, ok := pages[slug]
	if !ok || ref.ID == 0 {
		return pageRef{}, false
	}
	if p.frontPagePolicy == FrontPageWhenCreated && !ref.Created {
		return pageRef{}, false
	}
	return ref, true
}

func (p *Provisioner) provisionCategories(ctx context.Context) []int64 {
	ids := make([]int64, 0, len(p.catalog.Categories))

	for _, spec := range p.catalog.Categories {
		term, err := p.repository.GetTermBySlug(ctx, TaxonomyCategory, spec.Slug)
		if err == nil {
			ids = append(ids, term.ID)
			continue
		}
		if !isNotFound(err) {
			p.skip("create_category", spec.Slug, err)
			continue
		}

		term = &Term{Taxonomy: TaxonomyCategory, Name: spec.Name, Slug: spec.Slug}
		if err := p.repository.CreateTerm(ctx, term); err != nil {
			p.skip("create_category", spec.Slug, err)
			continue
		}
		ids = append(ids, term.ID)
	}

	return ids
}

func (p *Provisioner) provisionPosts(ctx context.Context, images []ImportedImage, categories []int64, result *ImportResult) {
	for i := 1; i <= p.catalog.PostCount; i++ {
		title := p.catalog.PostTitle(i)

		existing, err := p.findOne(ctx, ItemQuery{
			Types:      []ContentType{ContentTypePost},
			Statuses:   []ItemStatus{StatusPublish},
			Title:      title,
			Attributes: map[string]string{MarkerAttribute: MarkerValue},
		})
		if err != nil {
			p.skip("create_post", title, err)
			continue
		}
		if existing != nil {
			result.PostsSkipped++
			continue
		}

		img := pickImage(images, i)
		post := &Item{
			Type:       ContentTypePost,
			Title:      title,
			Slug:       slugify(title),
			Status:     StatusPublish,
			Content:    PostMarkup(title, img),
			Attributes: demoAttributes(),
		}
		if img.ID != 0 {
			post.FeaturedMediaID = img.ID
		}
		if len(categories) > 0 {
			post.TermIDs = append([]int64(nil), categories...)
		}
		if err := p.repository.CreateItem(ctx, post); err != nil {
			p.skip("create_post", title, err)
			continue
		}
		p.emit("item.created", p.eventSink.ItemCreated(ctx, post))

		result.PostsCreated++
	}
}

// provisionMenu ensures the menu exists and links every known menu page. It
// returns 0 when no menu is available.
func (p *Provisioner) provisionMenu(ctx context.Context, pages map[string]pageRef, result *ImportResult) int64 {
	menu, err := p.ensureMenu(ctx)
	if err != nil {
		p.skip("ensure_menu", p.catalog.MenuName, err)
		return 0
	}

	items, err := p.repository.ListMenuItems(ctx, menu.ID)
	if err != nil {
		p.skip("list_menu_items", p.catalog.MenuName, err)
		return menu.ID
	}
	linked := make(map[int64]bool, len(items))
	position := 0
	for _, item := range items {
		linked[item.ObjectID] = true
		position = max(position, item.Position)
	}

	for _, slug := range p.catalog.MenuPageSlugs {
		ref, ok := pages[slug]
		if !ok || ref.ID == 0 || linked[ref.ID] {
			continue
		}
		position++
		item := &MenuItem{
			MenuID:   menu.ID,
			ObjectID: ref.ID,
			Object:   string(ContentTypePage),
			Type:     "post_type",
			Status:   StatusPublish,
			Position: position,
		}
		if err := p.repository.AddMenuItem(ctx, item); err != nil {
			p.skip("add_menu_item", slug, err)
			continue
		}
		linked[ref.ID] = true
		result.MenuItemsCreated++
	}

	p.recordMenu(ctx, menu.ID)
	return menu.ID
}

func (p *Provisioner) ensureMenu(ctx context.Context) (*Menu, error) {
	menu, err := p.repository.GetMenuByName(ctx, p.catalog.MenuName)
	if err == nil {
		return menu, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	menu = &Menu{Name: p.catalog.MenuName}
	if err := p.repository.CreateMenu(ctx, menu); err != nil {
		return nil, err
	}
	p.emit("menu.created", p.eventSink.MenuCreated(ctx, menu))
	return menu, nil
}

// recordMenu stores the menu ID for removal unless an earlier run already did.
func (p *Provisioner) recordMenu(ctx context.Context, menuID int64) {
	current, err := p.settings.GetOption(ctx, MenuOption)
	if err != nil && !isNotFound(err) {
		p.skip("set_option", MenuOption, err)
		return
	}
	if current != "" && current != "0" {
		return
	}
	if err := p.settings.SetOption(ctx, MenuOption, formatID(menuID)); err != nil {
		p.skip("set_option", MenuOption, err)
	}
}

// assignMenuLocation binds the menu to the preferred theme slot and returns
// the slot, or "" when the theme declares none.
func (p *Provisioner) assignMenuLocation(ctx context.Context, menuID int64) string {
	declared, err := p.locations.MenuLocations(ctx)
	if err != nil {
		p.skip("assign_menu_location", "", err)
		return ""
	}
	slot := PreferredMenuLocation(declared)
	if slot == "" {
		return ""
	}

	locations, err := p.settings.GetMenuLocations(ctx)
	if err != nil {
		p.skip("assign_menu_location", slot, err)
		return ""
	}
	if locations == nil {
		locations = make(map[string]int64, 1)
	}
	locations[slot] = menuID
	if err := p.settings.SetMenuLocations(ctx, locations); err != nil {
		p.skip("assign_menu_location", slot, err)
		return ""
	}
	return slot
}

// PreferredMenuLocation picks primary_navigation, then primary, then the
// first declared slot. It returns "" when no slot is declared.
func PreferredMenuLocation(declared []MenuLocation) string {
	if len(declared) == 0 {
		return ""
	}
	for _, preferred := range []string{"primary_navigation", "primary"} {
		for _, loc := range declared {
			if loc.Slug == preferred {
				return preferred
			}
		}
	}
	return declared[0].Slug
}

func (p *Provisioner) findOne(ctx context.Context, query ItemQuery) (*Item, error) {
	query.Limit = 1
	items, err := p.repository.FindItems(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func demoAttributes() map[string]string {
	return map[string]string{MarkerAttribute: MarkerValue}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseID parses an ID stored in an option. Unset and malformed values are 0.
func ParseID(value string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}
