package app

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/scan"
	"github.com/bloombooks/bloomshelf/internal/util"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <bundle>",
		Short: "Unpack a book bundle into the library",
		Long: `Extracts every book and shelf file from a .bloombundle (a tar of book
archives, optionally base64-wrapped) into the primary library root.
Entries whose content already exists in the library are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if book.Classify(args[0]) != book.KindBundle {
				return fmt.Errorf("%q is not a bundle file", args[0])
			}
			return importBundle(args[0])
		},
	}
}

// importBundle unpacks one bundle into the primary root, deduplicating
// against the library's existing content.
func importBundle(path string) error {
	dest := cfg.PrimaryRoot()
	if err := util.EnsureDir(dest); err != nil {
		return err
	}
	existing := librarySHAs(dest)

	ctx, stop := signal.NotifyContext(rootCmd.Context(), os.Interrupt)
	defer stop()

	events := make(chan scan.Event, 16)
	go scan.ImportBundle(ctx, path, dest, func(sha string) bool {
		return existing[sha]
	}, events)

	added := 0
	for {
		switch ev := (<-events).(type) {
		case scan.FoundBook, scan.FoundShelf:
			added++
		case scan.EntryProgress:
			fmt.Printf("  %s\n", ev.Name)
		case scan.Skipped:
			warn("skipped %s: %s", ev.Path, ev.Reason)
		case scan.SearchComplete:
			if ev.Err != nil {
				return fmt.Errorf("importing %s: %w", path, ev.Err)
			}
			ok("imported %d items from %s", added, filepath.Base(path))
			return nil
		}
	}
}

// librarySHAs fingerprints the library's current files so bundle
// entries that duplicate them can be skipped.
func librarySHAs(dir string) map[string]bool {
	shas := map[string]bool{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return shas
	}
	for _, e := range entries {
		if e.IsDir() || book.Classify(e.Name()) == book.KindIgnored {
			continue
		}
		if sha, err := util.SHA256File(filepath.Join(dir, e.Name())); err == nil {
			shas[sha] = true
		}
	}
	return shas
}
