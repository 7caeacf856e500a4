package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var shelfID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the visible books and shelves",
		Long: `Prints the library's visible items in natural order. Without --shelf
the root view is shown: shelves, plus books not tagged onto any existing
shelf. With --shelf only that shelf's books are shown.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := loadCatalog(); err != nil {
				return err
			}
			cat.SetFilter(shelfID)

			visible := cat.Visible()
			if len(visible) == 0 {
				if shelfID != "" {
					warn("no books on shelf %q", shelfID)
				} else {
					warn("library is empty — try 'bloomshelf scan' or 'bloomshelf add'")
				}
				return nil
			}

			for _, it := range visible {
				if it.IsShelf() {
					fmt.Printf("  %s %s\n", color.YellowString("▸"), color.YellowString(it.Name))
					continue
				}
				line := "  " + it.Name
				if len(it.Shelves) > 0 {
					tags := make([]string, 0, len(it.Shelves))
					for id := range it.Shelves {
						tags = append(tags, id)
					}
					sort.Strings(tags)
					line += "  " + color.CyanString("["+strings.Join(tags, ", ")+"]")
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&shelfID, "shelf", "", "Show only books tagged onto this shelf id")
	return cmd
}
