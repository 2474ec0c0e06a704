// Package main is the entry point for the piranha settings CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pouyanh/piranha/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
