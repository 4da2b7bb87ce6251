// Package commands wires the subsync CLI together.
package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "subsync",
	Short: "Keep nested sub-repositories in sync with their remotes",
	Long: `Subsync applies one action uniformly across a configured list of nested
git working copies ("targets"):

  save    stage, commit and push local changes
  update  discard local changes and fast-forward from the remote

Targets live in a subsync.yaml file; missing directories and non-repos are
skipped, and a failure on one target never stops the rest.`,
	SilenceUsage: true,
	// Invoking subsync without an action is a configuration error, not a
	// request for help: show usage but exit non-zero.
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Usage()
		return errors.New("no action given")
	},
}

func init() {
	RegisterLoggerFlags(rootCmd)
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", "", "Config root (default: walk up from the working directory)")

	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
