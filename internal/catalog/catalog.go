// Package catalog maintains the in-memory registry of discovered books
// and shelves plus the filtered, sorted projection used for display. The
// on-disk library is the source of truth; the catalog is a cache over it
// and must be told about out-of-band changes via Add/Remove.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
)

// ErrStorageUnavailable is returned when the primary library root cannot
// be resolved at all. Fatal to a load; the caller surfaces it.
var ErrStorageUnavailable = errors.New("library storage unavailable")

// Catalog owns every discovered item and the visible projection.
// All methods are safe for concurrent use.
type Catalog struct {
	pool *archive.Pool
	// lang is the preferred UI language for shelf display names.
	lang string

	mu      sync.Mutex
	all     []*book.Item
	visible []*book.Item
	filter  string
}

// New creates an empty Catalog. The pool supplies scratch space for
// reading shelf tags out of book archives.
func New(pool *archive.Pool, lang string) *Catalog {
	return &Catalog{pool: pool, lang: lang}
}

// Filter returns the active shelf filter ("" is the root view).
func (c *Catalog) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetFilter switches the active filter and recomputes the visible
// projection. An empty id selects the root view.
func (c *Catalog) SetFilter(shelfID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = shelfID
	c.recompute()
}

// Visible returns a copy of the current filtered, sorted projection.
func (c *Catalog) Visible() []*book.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*book.Item, len(c.visible))
	copy(out, c.visible)
	return out
}

// All returns a copy of every loaded item.
func (c *Catalog) All() []*book.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*book.Item, len(c.all))
	copy(out, c.all)
	return out
}

// ByPath returns the item with the given path, or nil.
func (c *Catalog) ByPath(path string) *book.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byPathLocked(path)
}

// ShelfByID returns the loaded shelf item with the given id, or nil.
func (c *Catalog) ShelfByID(id string) *book.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.all {
		if it.IsShelf() && it.ShelfID == id {
			return it
		}
	}
	return nil
}

// Shelves returns every loaded shelf item.
func (c *Catalog) Shelves() []*book.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*book.Item
	for _, it := range c.all {
		if it.IsShelf() {
			out = append(out, it)
		}
	}
	return out
}

// Add registers a single newly arrived file (download, transfer, bundle
// import). Idempotent: adding a path that is already present returns the
// existing item. New items always join the visible projection regardless
// of the active filter, and stay highlighted in listings until the next
// full load; the user just acquired them and expects to spot them.
func (c *Catalog) Add(path string) (*book.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing := c.byPathLocked(path); existing != nil {
		return existing, nil
	}
	it, err := c.loadItem(path)
	if err != nil {
		return nil, err
	}
	it.Highlighted = true
	c.all = append(c.all, it)
	c.visible = append(c.visible, it)
	book.Sort(c.visible)
	return it, nil
}

// Remove deletes the item's backing file and drops it from the catalog.
// A nil or unknown item is a no-op.
func (c *Catalog) Remove(it *book.Item) error {
	if it == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(it.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", it.Path, err)
	}
	c.all = without(c.all, it.Path)
	c.visible = without(c.visible, it.Path)
	if it.IsShelf() {
		// Shelf set changed; root-view visibility depends on it.
		c.recompute()
	}
	return nil
}

// RemoveByPath drops the item with the given path, if loaded. Used by
// the filesystem watcher, where the backing file is already gone.
func (c *Catalog) RemoveByPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasShelf := false
	if it := c.byPathLocked(path); it != nil {
		wasShelf = it.IsShelf()
	}
	c.all = without(c.all, path)
	c.visible = without(c.visible, path)
	if wasShelf {
		c.recompute()
	}
}

// ItemsWithinShelf collects the shelf itself plus every item tagged with
// it, recursing into nested shelves. A visited set guards against shelf
// cycles, which nothing prevents users from creating.
func (c *Catalog) ItemsWithinShelf(shelf *book.Item) []*book.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	visited := map[string]struct{}{}
	return c.collectShelf(shelf, visited)
}

func (c *Catalog) collectShelf(shelf *book.Item, visited map[string]struct{}) []*book.Item {
	if shelf == nil || !shelf.IsShelf() {
		return nil
	}
	if _, seen := visited[shelf.Path]; seen {
		return nil
	}
	visited[shelf.Path] = struct{}{}
	out := []*book.Item{shelf}
	for _, it := range c.all {
		if it == shelf || !it.InShelf(shelf.ShelfID) {
			continue
		}
		if it.IsShelf() {
			out = append(out, c.collectShelf(it, visited)...)
			continue
		}
		if _, seen := visited[it.Path]; seen {
			continue
		}
		visited[it.Path] = struct{}{}
		out = append(out, it)
	}
	return out
}

// recompute rebuilds the visible projection. Callers hold c.mu.
//
// Root view ("" filter): an item is visible iff none of its shelf tags
// names a shelf that actually exists; a book tagged only with deleted
// shelves falls back to the root. Shelf view: visible iff tagged with
// the filter id, whether or not that shelf file exists.
func (c *Catalog) recompute() {
	existing := map[string]struct{}{}
	for _, it := range c.all {
		if it.IsShelf() && it.ShelfID != "" {
			existing[it.ShelfID] = struct{}{}
		}
	}
	c.visible = c.visible[:0]
	for _, it := range c.all {
		if c.isVisible(it, existing) {
			c.visible = append(c.visible, it)
		}
	}
	book.Sort(c.visible)
}

func (c *Catalog) isVisible(it *book.Item, existing map[string]struct{}) bool {
	if c.filter == "" {
		return !it.TaggedWithAny(existing)
	}
	return it.InShelf(c.filter)
}

func (c *Catalog) byPathLocked(path string) *book.Item {
	for _, it := range c.all {
		if it.Path == path {
			return it
		}
	}
	return nil
}

func without(items []*book.Item, path string) []*book.Item {
	for i, it := range items {
		if it.Path == path {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}
