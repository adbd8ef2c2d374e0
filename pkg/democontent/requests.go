package democontent

import "slices"

// ItemQuery selects items. Empty fields do not filter; an empty Statuses
// matches every status.
type ItemQuery struct {
	Types      []ContentType
	Statuses   []ItemStatus
	Slug       string
	Title      string
	Attributes map[string]string
	Limit      int
}

// Matches reports whether item satisfies the query filters. Repositories
// that filter in memory share it so every backend agrees on semantics.
func (q ItemQuery) Matches(item *Item) bool {
	if len(q.Types) > 0 && !slices.Contains(q.Types, item.Type) {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, item.Status) {
		return false
	}
	if q.Slug != "" && item.Slug != q.Slug {
		return false
	}
	if q.Title != "" && item.Title != q.Title {
		return false
	}
	for k, v := range q.Attributes {
		if got, ok := item.Attributes[k]; !ok || got != v {
			return false
		}
	}
	return true
}

// DemoItemsQuery selects every item of the given types carrying the marker,
// in any status.
func DemoItemsQuery(types ...ContentType) ItemQuery {
	return ItemQuery{
		Types:      types,
		Attributes: map[string]string{MarkerAttribute: MarkerValue},
	}
}

// SideloadRequest contains parameters for sideloading a remote image.
type SideloadRequest struct {
	URL        string
	Title      string
	Attributes map[string]string
}
