package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/subsync/internal/core/sync"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Discard local changes and fast-forward every target",
	Long: `Update fetches all remotes (pruning stale tracking refs), hard-resets the
working copy and pulls with fast-forward-only semantics.

Local modifications are discarded. This is intended for disposable working
copies whose authoritative state is the remote. Targets on a detached HEAD
are skipped untouched; a diverged history fails that target but the rest
are still processed.

Examples:
  # Update all configured targets
  subsync update

  # Update a single target
  subsync update --only vendor/tools

  # Preview what would run
  subsync update -n`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	registerRunFlags(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return runDispatch(cmd, sync.ActionUpdate, sync.Options{
		DryRun:  flagDryRun,
		Verbose: flagVerbose,
		Only:    flagOnly,
	})
}
