package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var latexCmd = &cobra.Command{
	Use:   "latex",
	Short: "Control the typeset representation of exposed types",
}

var latexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether exposed types carry the typeset representation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if facade.LatexRepr() {
			fmt.Println(color.GreenString("enabled"))
		} else {
			fmt.Println(color.YellowString("disabled"))
		}
		return nil
	},
}

var latexOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable the typeset representation on every exposed type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := facade.SetLatexRepr(true); err != nil {
			return err
		}
		log.Infof("typeset representation enabled")
		return nil
	},
}

var latexOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable the typeset representation on every exposed type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := facade.SetLatexRepr(false); err != nil {
			return err
		}
		log.Infof("typeset representation disabled")
		return nil
	},
}

func init() {
	latexCmd.AddCommand(latexStatusCmd)
	latexCmd.AddCommand(latexOnCmd)
	latexCmd.AddCommand(latexOffCmd)
	rootCmd.AddCommand(latexCmd)
}
