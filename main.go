// Package main is the rollcall entry point.
//
// The root command only wires subcommands. `serve` runs the HTTP API, the
// relay gateway and the observer websocket; the other commands work on the
// database directly and act as the system actor.
//
// There are no package-level dependencies: every command builds what it
// needs from config in the init_* helpers and closes it before returning.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "rollcall",
		Short:         "Attendance and game tracking for weekly voice sessions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(hashKeyCmd())
	rootCmd.AddCommand(memberCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
