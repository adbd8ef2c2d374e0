// Package democontent seeds a content repository with demo pages, posts,
// categories, a navigation menu and sideloaded images, and removes exactly
// what it created.
//
// A Provisioner orchestrates the import and removal workflows against
// pluggable collaborators: a Repository for items, terms and menus, a
// Settings store for site-wide options, a Sideloader that turns a remote URL
// into a stored media item, and a ThemeLocations source for the menu slots
// the active theme declares. Implementations of repositories (memory,
// Postgres) and blob stores (memory, filesystem, S3) are provided under
// subpackages.
//
// # Marker Strategy
//
// Every item the provisioner creates carries the attribute
// MarkerAttribute = MarkerValue. Removal only ever queries by that marker, so
// content an administrator created by hand is never touched. The menu is the
// one exception: menus carry no attributes, so the ID of the menu used by the
// first import is recorded in the MenuOption setting instead.
package democontent
