package app

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path or name>",
		Short: "Delete a book or shelf from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := loadCatalog(); err != nil {
				return err
			}
			it, err := findItem(args[0])
			if err != nil {
				return err
			}
			if err := cat.Remove(it); err != nil {
				return err
			}
			if err := thumbCache.Remove(it); err != nil {
				warn("clearing cached artifacts: %v", err)
			}
			ok("deleted %s", it.Name)
			return nil
		},
	}
}
