package app

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newShelvesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shelves",
		Short: "List the shelf files in the library",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := loadCatalog(); err != nil {
				return err
			}

			shelves := cat.Shelves()
			if len(shelves) == 0 {
				warn("no shelves in the library")
				return nil
			}
			for _, s := range shelves {
				books := cat.ItemsWithinShelf(s)
				// The shelf itself heads its own listing.
				count := len(books) - 1
				fmt.Printf("  %s %s  %s\n",
					color.YellowString("▸"),
					s.Name,
					color.CyanString("id=%s color=#%s books=%d", s.ShelfID, s.BackgroundColor, count))
			}
			return nil
		},
	}
}
