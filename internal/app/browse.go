package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/tui"
	"github.com/bloombooks/bloomshelf/internal/util"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the library interactively",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !util.IsTTY() {
				return fmt.Errorf("browse needs a terminal; use 'bloomshelf list' in scripts")
			}
			if err := loadCatalog(); err != nil {
				return err
			}
			return tui.Browse(cat)
		},
	}
}
