package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pouyanh/piranha/internal/types"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the exposed value types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range facade.Types() {
			capability := color.GreenString("latex")
			if _, err := d.LatexRepr("x"); errors.Is(err, types.ErrLatexReprDisabled) {
				capability = color.New(color.Faint).Sprint("no latex")
			}
			fmt.Printf("%-20s %s\n", d.Name(), capability)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
