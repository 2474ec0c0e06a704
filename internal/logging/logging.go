// Package logging provides the leveled logger used by the piranha CLI.
//
// Verbosity is controlled by the --verbose and --debug flags. Without
// flags only warnings and errors are shown.
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled, color-prefixed messages.
type Logger struct {
	Verbose bool
	Debug   bool
}

// Infof is shown with --verbose or --debug.
func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		fmt.Fprintf(os.Stdout, color.GreenString("[info] ")+msg+"\n", args...)
	}
}

// Debugf is shown only with --debug.
func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(os.Stdout, color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

// Warnf is always shown.
func (l Logger) Warnf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.YellowString("[warn] ")+msg+"\n", args...)
}

// Errorf is always shown.
func (l Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.RedString("[error] ")+msg+"\n", args...)
}
