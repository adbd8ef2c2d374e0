package democontent

import (
	"context"
	"log/slog"
	"slices"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ItemCreated(ctx context.Context, item *Item) error { return nil }
func (n *NoopEventSink) ItemDeleted(ctx context.Context, item *Item) error { return nil }
func (n *NoopEventSink) MenuCreated(ctx context.Context, menu *Menu) error { return nil }
func (n *NoopEventSink) MenuDeleted(ctx context.Context, menuID int64) error { return nil }
func (n *NoopEventSink) ImportCompleted(ctx context.Context, r ImportResult) error { return nil }
func (n *NoopEventSink) RemovalCompleted(ctx context.Context, removed int) error { return nil }

// LoggingEventSink is an event sink that logs events but takes no other action.
// Useful for development and debugging
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// ItemCreated logs the item creation event
func (l *LoggingEventSink) ItemCreated(ctx context.Context, item *Item) error {
	l.logger.InfoContext(ctx, "Demo item created", "id", item.ID, "type", item.Type, "title", item.Title)
	return nil
}

// ItemDeleted logs the item deletion event
func (l *LoggingEventSink) ItemDeleted(ctx context.Context, item *Item) error {
	l.logger.InfoContext(ctx, "Demo item deleted", "id", item.ID, "type", item.Type)
	return nil
}

// MenuCreated logs the menu creation event
func (l *LoggingEventSink) MenuCreated(ctx context.Context, menu *Menu) error {
	l.logger.InfoContext(ctx, "Demo menu created", "id", menu.ID, "name", menu.Name)
	return nil
}

// MenuDeleted logs the menu deletion event
func (l *LoggingEventSink) MenuDeleted(ctx context.Context, menuID int64) error {
	l.logger.InfoContext(ctx, "Demo menu deleted", "id", menuID)
	return nil
}

// ImportCompleted logs the import summary
func (l *LoggingEventSink) ImportCompleted(ctx context.Context, r ImportResult) error {
	l.logger.InfoContext(ctx, "Demo import completed",
		"images_imported", r.ImagesImported,
		"pages_created", r.PagesCreated,
		"posts_created", r.PostsCreated,
		"menu_items_created", r.MenuItemsCreated)
	return nil
}

// RemovalCompleted logs the removal summary
func (l *LoggingEventSink) RemovalCompleted(ctx context.Context, removed int) error {
	l.logger.InfoContext(ctx, "Demo removal completed", "removed", removed)
	return nil
}

type capabilitiesKey struct{}

// WithCapabilities returns a context whose actor holds the given capabilities.
func WithCapabilities(ctx context.Context, capabilities ...string) context.Context {
	return context.WithValue(ctx, capabilitiesKey{}, capabilities)
}

// CapabilitiesFromContext returns the capabilities attached by WithCapabilities.
func CapabilitiesFromContext(ctx context.Context) []string {
	caps, _ := ctx.Value(capabilitiesKey{}).([]string)
	return caps
}

// ContextAuthorizer grants the capabilities attached to the context.
type ContextAuthorizer struct{}

func (ContextAuthorizer) Can(ctx context.Context, capability string) bool {
	return slices.Contains(CapabilitiesFromContext(ctx), capability)
}

// StaticLocations is a fixed, ordered list of theme menu slots.
type StaticLocations []MenuLocation

func (s StaticLocations) MenuLocations(ctx context.Context) ([]MenuLocation, error) {
	return slices.Clone(s), nil
}
