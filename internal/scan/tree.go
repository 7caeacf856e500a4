package scan

import (
	"fmt"

	"github.com/bloombooks/bloomshelf/internal/book"
)

// Doc is one entry in an opaque document tree. ID is the handle used to
// enumerate children and to identify discoveries; Name is the display
// filename used for classification.
type Doc struct {
	ID    string
	Name  string
	IsDir bool
}

// Tree enumerates a storage hierarchy where raw filesystem paths are
// unavailable and children are addressed by document id.
type Tree interface {
	RootID() string
	Children(id string) ([]Doc, error)
}

// WalkTree scans a document tree breadth-first. inLibrary reports
// whether a document is already inside the managed library location:
// shelf files found there are skipped (the managed shelf set would
// otherwise duplicate every discovered shelf), but books and bundles
// are reported wherever they live.
//
// Exactly one SearchComplete is sent before returning.
func WalkTree(tr Tree, inLibrary func(Doc) bool, events chan<- Event) {
	err := walkTree(tr, inLibrary, events)
	events <- SearchComplete{Err: err}
}

func walkTree(tr Tree, inLibrary func(Doc) bool, events chan<- Event) error {
	queue := []string{tr.RootID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		children, err := tr.Children(id)
		if err != nil {
			return fmt.Errorf("listing children of %s: %w", id, err)
		}
		for _, d := range children {
			if d.IsDir {
				queue = append(queue, d.ID)
				continue
			}
			switch book.Classify(d.Name) {
			case book.KindBook:
				events <- FoundBook{Path: d.ID}
			case book.KindShelf:
				if inLibrary != nil && inLibrary(d) {
					events <- Skipped{Path: d.ID, Reason: "shelf already managed by the library"}
					continue
				}
				events <- FoundShelf{Path: d.ID}
			case book.KindBundle:
				// Bundles are never skipped, wherever they are found.
				events <- FoundBundle{Path: d.ID}
			}
		}
	}
	return nil
}
