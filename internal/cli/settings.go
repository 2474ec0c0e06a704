package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pouyanh/piranha/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change engine tunables",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every tunable with its current value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := facade.Snapshot()
		name := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s %s\n", name(settings.KeyMaxTermOutput), formatTermOutput(snap.MaxTermOutput))
		fmt.Printf("%s %d\n", name(settings.KeyNThreads), snap.NThreads)
		fmt.Printf("%s %d\n", name(settings.KeyMinWorkPerThread), snap.MinWorkPerThread)
		fmt.Printf("%s %t\n", name(settings.KeyLatexRepr), snap.LatexRepr)
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <tunable>",
	Short: "Show one tunable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case settings.KeyMaxTermOutput:
			v, err := facade.MaxTermOutput()
			if err != nil {
				return err
			}
			fmt.Println(formatTermOutput(v))
		case settings.KeyNThreads:
			v, err := facade.NThreads()
			if err != nil {
				return err
			}
			fmt.Println(v)
		case settings.KeyMinWorkPerThread:
			v, err := facade.MinWorkPerThread()
			if err != nil {
				return err
			}
			fmt.Println(v)
		case settings.KeyLatexRepr:
			fmt.Println(facade.LatexRepr())
		default:
			return fmt.Errorf("unknown tunable %q", args[0])
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <tunable> <value>",
	Short: "Validate and set one tunable",
	Long: `Validates and sets one tunable for this process.

The value goes through the same validation as any API caller: a
non-integer value for a numeric tunable is rejected as an invalid
type, zero or negative where a positive value is required as an
invalid value or overflow.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]

		var err error
		switch key {
		case settings.KeyMaxTermOutput:
			err = facade.SetMaxTermOutput(parseValue(raw))
		case settings.KeyNThreads:
			err = facade.SetNThreads(parseValue(raw))
		case settings.KeyMinWorkPerThread:
			err = facade.SetMinWorkPerThread(parseValue(raw))
		case settings.KeyLatexRepr:
			err = facade.SetLatexRepr(parseBoolValue(raw))
		default:
			return fmt.Errorf("unknown tunable %q", key)
		}
		if err != nil {
			return err
		}
		log.Infof("%s set to %s", key, raw)
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [tunable]",
	Short: "Restore one tunable, or all of them, to the default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if err := facade.Reset(); err != nil {
				return err
			}
			log.Infof("all tunables restored to defaults")
			return nil
		}
		var err error
		switch args[0] {
		case settings.KeyMaxTermOutput:
			err = facade.ResetMaxTermOutput()
		case settings.KeyNThreads:
			err = facade.ResetNThreads()
		case settings.KeyMinWorkPerThread:
			err = facade.ResetMinWorkPerThread()
		case settings.KeyLatexRepr:
			err = facade.SetLatexRepr(true)
		default:
			return fmt.Errorf("unknown tunable %q", args[0])
		}
		if err != nil {
			return err
		}
		log.Infof("%s restored to default", args[0])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// parseValue turns a CLI argument into the loosely-typed input the
// façade expects. Unparseable input is passed through as a string so
// the façade classifies it as an invalid type, keeping one taxonomy.
func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return u
	}
	return raw
}

// parseBoolValue is parseValue for boolean tunables.
func parseBoolValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// formatTermOutput renders the unlimited sentinel readably.
func formatTermOutput(v int) string {
	if v == 0 {
		return "0 (unlimited)"
	}
	return strconv.Itoa(v)
}
