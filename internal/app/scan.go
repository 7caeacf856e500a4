package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/scan"
	"github.com/bloombooks/bloomshelf/internal/util"
)

func newScanCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the library roots and report what was found",
		Long: `Scans the configured library roots, validating every book archive.
Corrupt books are renamed aside with a -BAD suffix rather than deleted.
With --from, a foreign directory tree is searched first and any books,
shelves and bundles found there are copied into the library.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if from != "" {
				if err := gatherFrom(from); err != nil {
					return err
				}
			}

			count := 0
			res, err := cat.Load(cfg.Library.Roots, func(string) { count++ })
			if err != nil {
				return err
			}
			reportLoad(res)
			ok("%d items in the library (%d files examined)", res.Added, count)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Directory tree to search for books before scanning")
	return cmd
}

// gatherFrom walks a foreign directory tree and copies everything
// recognizable into the primary library root. Bundles are imported in
// place rather than copied whole.
func gatherFrom(root string) error {
	dest := cfg.PrimaryRoot()
	if err := util.EnsureDir(dest); err != nil {
		return err
	}

	events := make(chan scan.Event, 16)
	go scan.WalkRoot(root, events)

	for {
		switch ev := (<-events).(type) {
		case scan.FoundBook:
			copyIn(ev.Path, dest)
		case scan.FoundShelf:
			copyIn(ev.Path, dest)
		case scan.FoundBundle:
			header("Bundle: %s", ev.Path)
			if err := importBundle(ev.Path); err != nil {
				warn("importing %s: %v", ev.Path, err)
			}
		case scan.Skipped:
			warn("skipped %s: %s", ev.Path, ev.Reason)
		case scan.SearchComplete:
			if ev.Err != nil {
				return fmt.Errorf("searching %s: %w", root, ev.Err)
			}
			return nil
		}
	}
}

func copyIn(path, dest string) {
	target := filepath.Join(dest, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		return
	}
	if err := util.CopyFile(path, target); err != nil {
		warn("copying %s: %v", path, err)
		return
	}
	ok("gathered %s", filepath.Base(path))
}
