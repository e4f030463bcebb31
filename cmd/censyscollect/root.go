// Package main provides the entry point for the censyscollect CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for censyscollect.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "censyscollect",
		Short: "Collector for Censys host search results",
		Long: `censyscollect runs a paged Censys hosts search for a textual service
fingerprint, keeps every raw host document, and flattens the HTTP
endpoints whose page title matches a configured allow-list into CSV rows.

Credentials are read from the CENSYS_API_ID and CENSYS_API_SECRET
environment variables (a .env file in the working directory is loaded
automatically).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCollectCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
