package democontent

import (
	"context"
	"errors"
)

// RemoveDemoContent permanently deletes every item carrying the demo marker
// and the menu recorded by the first import. It returns how many deletions
// succeeded. There is no rollback: a failed deletion is logged and left out
// of the count. An actor without CapabilityManageOptions gets 0.
func (p *Provisioner) RemoveDemoContent(ctx context.Context) int {
	if !p.authorizer.Can(ctx, CapabilityManageOptions) {
		p.logger.WarnContext(ctx, "Demo content removal denied")
		return 0
	}

	removed := p.removeItems(ctx, ContentTypePage, ContentTypePost)
	removed += p.removeItems(ctx, ContentTypeAttachment)
	if p.removeMenu(ctx) {
		removed++
	}

	p.logger.InfoContext(ctx, "Demo content removed", "removed", removed)
	p.emit("removal.completed", p.eventSink.RemovalCompleted(ctx, removed))

	return removed
}

func (p *Provisioner) removeItems(ctx context.Context, types ...ContentType) int {
	items, err := p.repository.FindItems(ctx, DemoItemsQuery(types...))
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to list demo items", "types", types, "error", err)
		return 0
	}

	removed := 0
	for _, item := range items {
		if !item.IsDemo() {
			continue
		}
		if err := p.repository.DeleteItem(ctx, item.ID); err != nil {
			p.logger.ErrorContext(ctx, "Failed to delete demo item", "id", item.ID, "type", item.Type, "error", err)
			continue
		}
		removed++

		if item.Type == ContentTypeAttachment && p.mediaCleaner != nil {
			if err := p.mediaCleaner.RemoveMedia(ctx, item); err != nil {
				p.logger.WarnContext(ctx, "Failed to remove media files", "id", item.ID, "error", err)
			}
		}
		p.emit("item.deleted", p.eventSink.ItemDeleted(ctx, item))
	}
	return removed
}

// removeMenu deletes the recorded menu and unbinds it from theme slots. The
// option is cleared in every case. It reports whether a menu was deleted.
func (p *Provisioner) removeMenu(ctx context.Context) bool {
	value, err := p.settings.GetOption(ctx, MenuOption)
	if err != nil {
		if !errors.Is(err, ErrOptionNotFound) {
			p.logger.ErrorContext(ctx, "Failed to read menu option", "error", err)
		}
		return false
	}

	deleted := false
	if menuID := ParseID(value); menuID > 0 {
		deleted = p.deleteMenu(ctx, menuID)
		p.unbindMenu(ctx, menuID)
	}

	if err := p.settings.DeleteOption(ctx, MenuOption); err != nil && !errors.Is(err, ErrOptionNotFound) {
		p.logger.ErrorContext(ctx, "Failed to clear menu option", "error", err)
	}
	return deleted
}

func (p *Provisioner) deleteMenu(ctx context.Context, menuID int64) bool {
	if _, err := p.repository.GetMenu(ctx, menuID); err != nil {
		if !errors.Is(err, ErrMenuNotFound) {
			p.logger.ErrorContext(ctx, "Failed to load demo menu", "id", menuID, "error", err)
		}
		return false
	}
	if err := p.repository.DeleteMenu(ctx, menuID); err != nil {
		p.logger.ErrorContext(ctx, "Failed to delete demo menu", "id", menuID, "error", err)
		return false
	}
	p.emit("menu.deleted", p.eventSink.MenuDeleted(ctx, menuID))
	return true
}

// unbindMenu drops every slot still pointing at menuID.
func (p *Provisioner) unbindMenu(ctx context.Context, menuID int64) {
	locations, err := p.settings.GetMenuLocations(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to read menu locations", "error", err)
		return
	}

	changed := false
	for slot, id := range locations {
		if id == menuID {
			delete(locations, slot)
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := p.settings.SetMenuLocations(ctx, locations); err != nil {
		p.logger.ErrorContext(ctx, "Failed to update menu locations", "error", err)
	}
}
