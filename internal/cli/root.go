// Package cli implements the piranha command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pouyanh/piranha/internal/logging"
	"github.com/pouyanh/piranha/internal/settings"
	"github.com/pouyanh/piranha/internal/settings/loader"
)

var (
	rootVerbose    bool
	rootDebug      bool
	rootConfigPath string

	log logging.Logger

	// facade is the process-wide settings façade, constructed once in
	// the root PersistentPreRunE and torn down in PersistentPostRunE.
	facade *settings.Settings

	rootCmd = &cobra.Command{
		Use:   "piranha",
		Short: "Inspect and tune piranha engine settings",
		Long: `piranha manages the global tunables of the piranha engine:
the maximum number of series terms printed, the worker thread count,
the minimum workload per thread, and whether exposed types carry a
typeset (LaTeX) representation.

Overrides are read from piranha.toml when present.

Examples:
  # Show every tunable
  piranha settings list

  # Change the worker thread count
  piranha settings set n_threads 4

  # Turn the typeset representation off
  piranha latex off`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = logging.Logger{Verbose: rootVerbose, Debug: rootDebug}

			s, err := settings.New()
			if err != nil {
				return err
			}
			facade = s

			overrides, err := loader.NewTOMLLoader(rootConfigPath).Load()
			if err != nil {
				return err
			}
			if overrides != nil {
				log.Debugf("applying overrides from %s", rootConfigPath)
				if err := loader.Apply(facade, overrides); err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if facade == nil {
				return nil
			}
			return facade.Close()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&rootDebug, "debug", "d", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", loader.DefaultFileName, "path to the overrides file")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
