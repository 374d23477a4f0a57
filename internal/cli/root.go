// Package cli wires the snakeguard binary's subcommands: serve (the HTTP
// submission pipeline), train (a one-shot forced training run), and
// migrate (apply schema migrations without starting the server). Uses a
// cobra command-tree shape: a package-level rootCmd, subcommands
// registered from their own file's init(), flags declared next to the
// command that reads them.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use: "snakeguard",
	Short: "Server-side anti-cheat pipeline for a grid-based snake game",
	Long: `snakeguard runs the submission pipeline that decides whether a
played game's score is legitimate: a deterministic replay engine, a layered
rule-based detector, a shadow ML detector, and a background retraining
worker driven by edge-case disagreements.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (defaults built in if omitted)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
