package app

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/util"
	"github.com/bloombooks/bloomshelf/internal/watch"
	"github.com/bloombooks/bloomshelf/internal/wifi"
)

func newListenCmd() *cobra.Command {
	var withWatcher bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive books pushed over the local network",
		Long: `Listens for book advertisements broadcast by the desktop publishing
application and pulls any book that is missing or out of date. Runs
until interrupted. With --watch, library directory edits made by other
programs are mirrored into the catalog as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := util.EnsureDir(cfg.PrimaryRoot()); err != nil {
				return err
			}
			if err := loadCatalog(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			l := wifi.NewListener(wifi.Config{
				LibraryDir:  cfg.PrimaryRoot(),
				DeviceName:  cfg.Device.Name,
				AdvertPort:  cfg.WiFi.AdvertPort,
				RequestPort: cfg.WiFi.RequestPort,
				ReceivePort: cfg.WiFi.ReceivePort,
			}, pool)
			l.Logf = func(format string, a ...interface{}) {
				fmt.Printf("  %s\n", fmt.Sprintf(format, a...))
			}
			l.OnBook = func(path string) {
				if _, err := cat.Add(path); err != nil {
					warn("received %s but could not catalog it: %v", path, err)
					return
				}
				ok("received %s", book.DisplayName(path))
			}

			if withWatcher {
				w := watch.New(cat, cfg.Library.Roots)
				w.Logf = l.Logf
				go func() {
					if err := w.Run(ctx); err != nil && ctx.Err() == nil {
						warn("watcher stopped: %v", err)
					}
				}()
			}

			header("Listening as %q — ctrl-c to stop", cfg.Device.Name)
			err := l.Run(ctx)
			if ctx.Err() != nil {
				// Interrupted: give in-flight transfers a beat to finish
				// logging, then leave quietly.
				time.Sleep(50 * time.Millisecond)
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&withWatcher, "watch", false, "Also mirror external library edits into the catalog")
	return cmd
}
