package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/ingest"
	"github.com/bloombooks/bloomshelf/internal/util"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path or url>",
		Short: "Add a book or shelf file to the library",
		Long: `Copies a book archive or shelf file into the primary library root.
The source may be a local path or an http(s) URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := loadCatalog(); err != nil {
				return err
			}

			src, err := ingest.Resolve(args[0])
			if err != nil {
				return err
			}
			switch book.Classify(src.Name) {
			case book.KindBook, book.KindShelf:
			case book.KindBundle:
				return fmt.Errorf("%q is a bundle — use 'bloomshelf import'", src.Name)
			default:
				return fmt.Errorf("%q is not a book or shelf file", src.Name)
			}

			dest, err := fetchIntoLibrary(src)
			if err != nil {
				return err
			}

			it, err := cat.Add(dest)
			if err != nil {
				// The copy is bad: leave no trace in the library.
				os.Remove(dest)
				return fmt.Errorf("adding %s: %w", src.Name, err)
			}
			ok("added %s", it.Name)
			return nil
		},
	}
}

// fetchIntoLibrary streams the source into the primary root, fsyncing
// through a temp name so a failed download never looks like a book.
func fetchIntoLibrary(src *ingest.Source) (string, error) {
	destDir := cfg.PrimaryRoot()
	if err := util.EnsureDir(destDir); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, filepath.Base(src.Name))
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%s already exists in the library", filepath.Base(dest))
	}

	rc, err := src.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	counted := ingest.NewReader(rc)
	if _, err := io.Copy(f, counted); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("fetching %s: %w", src.Name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}

	if book.Classify(src.Name) == book.KindBook && !counted.LooksLikeZip() {
		os.Remove(tmp)
		return "", fmt.Errorf("%s is not a zip archive", src.Name)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", err
	}
	ok("fetched %s (%s)", filepath.Base(dest), humanBytes(counted.Size()))
	return dest, nil
}
