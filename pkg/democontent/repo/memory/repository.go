package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tendant/demo-content/pkg/democontent"
)

// Repository implements democontent.Repository and democontent.Settings
// using in-memory storage
type Repository struct {
	mu            sync.RWMutex
	nextID        int64
	items         map[int64]*democontent.Item
	terms         map[int64]*democontent.Term
	menus         map[int64]*democontent.Menu
	menuItems     map[int64][]*democontent.MenuItem // menu_id -> ordered items
	options       map[string]string
	menuLocations map[string]int64
}

var (
	_ democontent.Repository = (*Repository)(nil)
	_ democontent.Settings   = (*Repository)(nil)
)

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items:         make(map[int64]*democontent.Item),
		terms:         make(map[int64]*democontent.Term),
		menus:         make(map[int64]*democontent.Menu),
		menuItems:     make(map[int64][]*democontent.MenuItem),
		options:       make(map[string]string),
		menuLocations: make(map[string]int64),
	}
}

// allocateID hands out IDs from one sequence shared by every object kind,
// so an item ID is never reused as a menu or term ID. Callers hold r.mu.
func (r *Repository) allocateID() int64 {
	r.nextID++
	return r.nextID
}

func copyItem(item *democontent.Item) *democontent.Item {
	itemCopy := *item
	itemCopy.TermIDs = slices.Clone(item.TermIDs)
	itemCopy.Attributes = maps.Clone(item.Attributes)
	return &itemCopy
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *democontent.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	item.ID = r.allocateID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	// Create a copy to avoid external modifications
	r.items[item.ID] = copyItem(item)
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id int64) (*democontent.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, democontent.ErrItemNotFound
	}
	return copyItem(item), nil
}

// DeleteItem removes the item permanently together with menu entries that
// link to it.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return democontent.ErrItemNotFound
	}
	delete(r.items, id)

	for menuID, entries := range r.menuItems {
		r.menuItems[menuID] = slices.DeleteFunc(entries, func(e *democontent.MenuItem) bool {
			return e.ObjectID == id
		})
	}
	return nil
}

func (r *Repository) FindItems(ctx context.Context, query democontent.ItemQuery) ([]*democontent.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*democontent.Item
	for _, item := range r.items {
		if query.Matches(item) {
			result = append(result, copyItem(item))
		}
	}

	// Sort by ID ascending so lookups are deterministic
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}
	return result, nil
}

// Taxonomy operations

func (r *Repository) GetTermBySlug(ctx context.Context, taxonomy, slug string) (*democontent.Term, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, term := range r.terms {
		if term.Taxonomy == taxonomy && term.Slug == slug {
			termCopy := *term
			return &termCopy, nil
		}
	}
	return nil, democontent.ErrTermNotFound
}

func (r *Repository) CreateTerm(ctx context.Context, term *democontent.Term) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	term.ID = r.allocateID()
	termCopy := *term
	r.terms[term.ID] = &termCopy
	return nil
}

// Menu operations

func (r *Repository) GetMenu(ctx context.Context, id int64) (*democontent.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	menu, exists := r.menus[id]
	if !exists {
		return nil, democontent.ErrMenuNotFound
	}
	menuCopy := *menu
	return &menuCopy, nil
}

func (r *Repository) GetMenuByName(ctx context.Context, name string) (*democontent.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *democontent.Menu
	for _, menu := range r.menus {
		if menu.Name == name && (found == nil || menu.ID < found.ID) {
			found = menu
		}
	}
	if found == nil {
		return nil, democontent.ErrMenuNotFound
	}
	menuCopy := *found
	return &menuCopy, nil
}

func (r *Repository) CreateMenu(ctx context.Context, menu *democontent.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	menu.ID = r.allocateID()
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = time.Now().UTC()
	}
	menuCopy := *menu
	r.menus[menu.ID] = &menuCopy
	return nil
}

// DeleteMenu removes the menu and its entries.
func (r *Repository) DeleteMenu(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.menus[id]; !exists {
		return democontent.ErrMenuNotFound
	}
	delete(r.menus, id)
	delete(r.menuItems, id)
	return nil
}

func (r *Repository) ListMenuItems(ctx context.Context, menuID int64) ([]*democontent.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.menus[menuID]; !exists {
		return nil, democontent.ErrMenuNotFound
	}

	entries := r.menuItems[menuID]
	result := make([]*democontent.MenuItem, 0, len(entries))
	for _, entry := range entries {
		entryCopy := *entry
		result = append(result, &entryCopy)
	}
	return result, nil
}

func (r *Repository) AddMenuItem(ctx context.Context, item *democontent.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.menus[item.MenuID]; !exists {
		return democontent.ErrMenuNotFound
	}

	item.ID = r.allocateID()
	itemCopy := *item
	r.menuItems[item.MenuID] = append(r.menuItems[item.MenuID], &itemCopy)
	return nil
}

// Settings operations

func (r *Repository) GetOption(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.options[key]
	if !exists {
		return "", democontent.ErrOptionNotFound
	}
	return value, nil
}

func (r *Repository) SetOption(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.options[key] = value
	return nil
}

func (r *Repository) DeleteOption(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.options, key)
	return nil
}

func (r *Repository) GetMenuLocations(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.menuLocations), nil
}

// SetMenuLocations replaces the whole slot mapping.
func (r *Repository) SetMenuLocations(ctx context.Context, locations map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.menuLocations = maps.Clone(locations)
	if r.menuLocations == nil {
		r.menuLocations = make(map[string]int64)
	}
	return nil
}
