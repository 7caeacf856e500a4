package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/meta"
)

// loadScratch is the scratch purpose used while reading shelf tags
// during loads. Load and Add serialize on it through the pool.
const loadScratch = "load"

// Progress receives one call per item processed during a load.
type Progress func(name string)

// Result summarizes a Load.
type Result struct {
	// Added counts items accepted into the catalog.
	Added int
	// Quarantined lists files that failed archive validation and were
	// renamed aside with the -BAD suffix.
	Quarantined []string
	// Warnings carries per-item problems that did not stop the load.
	Warnings []string
}

// Load discovers books and shelves under the given roots, replacing the
// catalog's contents. The first root is the primary storage location; if
// it cannot be read the load fails with ErrStorageUnavailable. Problems
// with later roots or with individual files are reported in the Result
// and do not abort the load.
func (c *Catalog) Load(roots []string, progress Progress) (*Result, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no library roots configured: %w", ErrStorageUnavailable)
	}
	if _, err := os.ReadDir(roots[0]); err != nil {
		return nil, fmt.Errorf("%s: %w", roots[0], errors.Join(ErrStorageUnavailable, err))
	}

	res := &Result{}
	var items []*book.Item
	for i, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("%s: %w", root, errors.Join(ErrStorageUnavailable, err))
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("skipping root %s: %v", root, err))
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(root, e.Name())
			if progress != nil {
				progress(e.Name())
			}
			switch book.Classify(e.Name()) {
			case book.KindBook, book.KindShelf:
				it, err := c.loadItem(path)
				if err != nil {
					if quarantined := c.quarantine(path, err, res); quarantined {
						continue
					}
					res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", path, err))
					continue
				}
				// Same path discovered via two roots: first one wins.
				if containsPath(items, path) {
					continue
				}
				items = append(items, it)
				res.Added++
			case book.KindBundle, book.KindIgnored:
				// Bundles are imported explicitly, not loaded in place.
			}
		}
	}

	c.mu.Lock()
	c.all = items
	c.recompute()
	c.mu.Unlock()
	return res, nil
}

// loadItem builds an Item for the file at path, populating shelf tags
// and shelf descriptor fields. Metadata trouble is fail-open: the item
// is still created, with defaults. Archive corruption is not: the error
// propagates so the caller can quarantine the file.
func (c *Catalog) loadItem(path string) (*book.Item, error) {
	it := book.New(path)
	if it.IsShelf() {
		d, err := meta.ReadShelf(path)
		if err != nil {
			// Fail-open: filename-derived name, white tile, no tags.
			return it, nil
		}
		it.ShelfID = d.ID
		if d.Color != "" {
			it.BackgroundColor = d.Color
		}
		if name := d.DisplayName(c.lang); name != "" {
			it.Name = name
		}
		it.SetShelves(d.Shelves())
		return it, nil
	}

	if err := archive.Validate(path); err != nil {
		return nil, err
	}
	s, err := c.pool.Acquire(loadScratch)
	if err != nil {
		return nil, err
	}
	a, err := archive.Open(path, s)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	m, err := meta.Read(a)
	if err != nil {
		// Fail-open: empty tag set, no branding.
		return it, nil
	}
	it.BrandingProjectName = m.BrandingProjectName
	it.SetShelves(m.Shelves())
	return it, nil
}

// quarantine renames a file that failed zip validation so it is excluded
// from future loads but kept as evidence. Reports whether the error was
// a corruption (and thus handled).
func (c *Catalog) quarantine(path string, err error, res *Result) bool {
	if !errors.Is(err, archive.ErrCorrupt) {
		return false
	}
	bad := path + book.QuarantineSuffix
	if renameErr := os.Rename(path, bad); renameErr != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("quarantining %s: %v", path, renameErr))
		return true
	}
	res.Quarantined = append(res.Quarantined, bad)
	res.Warnings = append(res.Warnings, fmt.Sprintf("%s is not a valid book archive, renamed to %s", path, filepath.Base(bad)))
	return true
}

func containsPath(items []*book.Item, path string) bool {
	for _, it := range items {
		if it.Path == path {
			return true
		}
	}
	return false
}
