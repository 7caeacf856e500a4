// Package app wires the bloomshelf commands.
package app

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/catalog"
	"github.com/bloombooks/bloomshelf/internal/config"
	"github.com/bloombooks/bloomshelf/internal/thumbs"
	"github.com/bloombooks/bloomshelf/internal/util"
)

var (
	cfg        *config.Config
	pool       *archive.Pool
	cat        *catalog.Catalog
	thumbCache *thumbs.Cache

	flagNoColor bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "bloomshelf",
	Short: "Manage a local library of Bloom books",
	Long: `bloomshelf maintains a directory of Bloom book archives and shelf
files: it scans, filters and inspects the library, imports books from
files, URLs and bundles, and receives books pushed over the local
network by the desktop publishing application.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/bloomshelf/config.yml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		if flagConfig != "" {
			os.Setenv("BLOOMSHELF_CONFIG", flagConfig)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if err := util.EnsureDir(cfg.Library.ScratchDir); err != nil {
			return fmt.Errorf("preparing scratch dir: %w", err)
		}
		pool = archive.NewPool(cfg.Library.ScratchDir)
		cat = catalog.New(pool, cfg.Device.Language)
		thumbCache = thumbs.New(cfg.ThumbsDir(), pool)
		return nil
	}

	rootCmd.AddCommand(
		newScanCmd(),
		newListCmd(),
		newBrowseCmd(),
		newShelvesCmd(),
		newInfoCmd(),
		newAddCmd(),
		newImportCmd(),
		newListenCmd(),
		newDeleteCmd(),
		newVersionCmd(),
	)
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}
