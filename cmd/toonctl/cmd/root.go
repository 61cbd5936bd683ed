// Package cmd provides the CLI commands for toonctl, a client for the
// toonrec HTTP API.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/toonrec/toonrec/internal/version"
)

// NewRootCmd creates the root command for the toonctl CLI.
func NewRootCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "toonctl",
		Short: "Client for the toonrec recommendation service",
		Long: `toonctl talks to a running toonrec server: ask for webtoon
recommendations, inspect how a query is classified, load catalog data
and check catalog statistics.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("toonctl version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "toonrec server address")

	cmd.AddCommand(newAskCmd(&addr))
	cmd.AddCommand(newChatCmd(&addr))
	cmd.AddCommand(newClassifyCmd(&addr))
	cmd.AddCommand(newStatsCmd(&addr))
	cmd.AddCommand(newLoadCmd(&addr))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
