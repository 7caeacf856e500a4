package book

import (
	"path/filepath"
	"strings"
)

// Item is one entry in the library: either a book archive or a shelf
// descriptor file. Whether it is a shelf is derived from the path, never
// stored separately.
type Item struct {
	// Path is the item's identity. Two Items are the same item iff their
	// paths are equal.
	Path string
	// Name is the display name, derived from the filename with the
	// library extension stripped.
	Name string

	// Highlighted marks the item for emphasis in listings. Transient,
	// never persisted.
	Highlighted bool

	// BackgroundColor is the shelf tile color (shelves only). Hex string,
	// white when the descriptor does not specify one.
	BackgroundColor string
	// ShelfID is the shelf's identifier (shelves only).
	ShelfID string

	// BrandingProjectName comes from the book's meta.json (books only).
	BrandingProjectName string

	// Shelves holds the shelf ids this item is tagged with. Populated
	// once when the item is loaded; membership test only, unordered.
	Shelves map[string]struct{}
}

// New creates an Item for the file at path. Shelf tags are left empty;
// the caller populates them from the item's metadata.
func New(path string) *Item {
	return &Item{
		Path:            path,
		Name:            DisplayName(path),
		BackgroundColor: DefaultShelfColor,
		Shelves:         map[string]struct{}{},
	}
}

// DefaultShelfColor is used when a shelf descriptor has no color.
const DefaultShelfColor = "ffffff"

// DisplayName strips the directory and the library extension from path.
func DisplayName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{EncodedExt, BookExt, ShelfExt, BundleExt} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// IsShelf reports whether the item is a shelf descriptor.
func (it *Item) IsShelf() bool {
	return strings.HasSuffix(it.Path, ShelfExt)
}

// SetShelves replaces the item's shelf tags.
func (it *Item) SetShelves(ids []string) {
	it.Shelves = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		it.Shelves[id] = struct{}{}
	}
}

// InShelf reports whether the item is tagged with the given shelf id.
func (it *Item) InShelf(id string) bool {
	_, ok := it.Shelves[id]
	return ok
}

// TaggedWithAny reports whether any of the item's shelf tags appears in
// the given set of existing shelf ids.
func (it *Item) TaggedWithAny(existing map[string]struct{}) bool {
	for id := range it.Shelves {
		if _, ok := existing[id]; ok {
			return true
		}
	}
	return false
}
