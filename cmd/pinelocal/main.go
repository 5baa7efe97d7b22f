// Package main provides the pinelocal server and maintenance CLI.
//
// Usage:
//
//	pinelocal [flags] <command> [args]
//
// Commands:
//
//	serve   - Run the HTTP API
//	index   - Inspect and maintain indexes of a data directory
//	config  - Show the resolved configuration
//
// Configuration:
//
//	Defaults are overridden by the file given with --config (or
//	PINELOCAL_CONFIG), then by environment variables, then by flags.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/pinelocal/cmd/pinelocal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
