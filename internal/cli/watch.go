package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pouyanh/piranha/internal/settings/notify"
	"github.com/pouyanh/piranha/internal/settings/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the overrides file and report changes until interrupted",
	Long: `Watches the overrides file for changes and applies each edit live,
printing every resulting settings change. Removing the file restores
all defaults. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub := facade.Subscribe(func(c notify.Change) {
			switch c.Type {
			case notify.ChangeReload:
				log.Infof("reloaded %s", c.Source)
			default:
				fmt.Printf("%s %s: %v -> %v\n", c.Type, c.Key, c.OldValue, c.NewValue)
			}
		})
		defer sub.Unsubscribe()

		w, err := watcher.New(rootConfigPath, facade,
			watcher.WithOnError(func(err error) {
				log.Warnf("reload failed: %v", err)
			}))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		log.Infof("watching %s", rootConfigPath)

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
