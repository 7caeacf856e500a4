package app

import (
	"fmt"
	"path/filepath"

	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/catalog"
)

// loadCatalog fills the catalog from the configured roots and reports
// load-time problems on stderr.
func loadCatalog() error {
	res, err := cat.Load(cfg.Library.Roots, nil)
	if err != nil {
		return err
	}
	reportLoad(res)
	return nil
}

func reportLoad(res *catalog.Result) {
	for _, q := range res.Quarantined {
		warn("quarantined corrupt book: %s", q)
	}
	for _, w := range res.Warnings {
		warn("%s", w)
	}
}

// findItem resolves a command argument to a catalog item: an exact
// path, a path relative to the current directory, or a display name.
func findItem(arg string) (*book.Item, error) {
	if it := cat.ByPath(arg); it != nil {
		return it, nil
	}
	if abs, err := filepath.Abs(arg); err == nil {
		if it := cat.ByPath(abs); it != nil {
			return it, nil
		}
	}
	var found *book.Item
	for _, it := range cat.All() {
		if it.Name == arg {
			if found != nil {
				return nil, fmt.Errorf("%q names more than one item, use its path", arg)
			}
			found = it
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no book or shelf named %q in the library", arg)
	}
	return found, nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n := n / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
