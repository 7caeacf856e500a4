// Package watch mirrors out-of-band library directory changes into the
// catalog. Downloads, file-manager moves and deletions all land here;
// the catalog itself never polls the disk.
package watch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/catalog"
)

// Watcher feeds filesystem events from the library roots into a
// catalog.
type Watcher struct {
	cat   *catalog.Catalog
	roots []string

	// Logf receives a line per applied change. Defaults to a no-op.
	Logf func(format string, args ...interface{})
}

// New creates a Watcher over the given roots.
func New(cat *catalog.Catalog, roots []string) *Watcher {
	return &Watcher{
		cat:   cat,
		roots: roots,
		Logf:  func(string, ...interface{}) {},
	}
}

// Run watches until ctx is cancelled. Returns the cancellation cause,
// or an error if a root cannot be watched at all.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	for _, root := range w.roots {
		if err := fw.Add(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.apply(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logf("watch error: %v", err)
		}
	}
}

// apply maps one filesystem event onto the catalog. Writers produce a
// Create followed by Write events while the file fills; the item is
// only added once the archive validates, so half-written books are
// retried on the next Write and never enter the catalog early.
func (w *Watcher) apply(ev fsnotify.Event) {
	kind := book.Classify(ev.Name)
	if kind == book.KindIgnored || kind == book.KindBundle {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cat.RemoveByPath(ev.Name)
		w.Logf("removed %s", ev.Name)
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if kind == book.KindBook {
			if err := archive.Validate(ev.Name); err != nil {
				return
			}
		}
		if w.cat.ByPath(ev.Name) != nil {
			return
		}
		if _, err := w.cat.Add(ev.Name); err != nil {
			w.Logf("adding %s: %v", ev.Name, err)
			return
		}
		w.Logf("added %s", ev.Name)
	}
}
