package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/subsync/internal/core/sync"
)

var flagMessage string

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Stage, commit and push local changes in every target",
	Long: `Save stages all changes (deletions included), commits them and pushes.

A target with nothing to commit is not an error; the push step still runs.
Targets without an origin remote are committed locally and the push is
skipped. A branch without an upstream gets one set on origin.

Examples:
  # Save everything with a generated message
  subsync save

  # Save with an explicit message
  subsync save -m "checkpoint before refactor"

  # Preview what would run
  subsync save -n`,
	Args: cobra.NoArgs,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&flagMessage, "message", "m", "", "Commit message (default: \"sync at <timestamp>\")")
	registerRunFlags(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	message := flagMessage
	if message == "" {
		message = sync.DefaultMessage(time.Now())
	}

	return runDispatch(cmd, sync.ActionSave, sync.Options{
		Message: message,
		DryRun:  flagDryRun,
		Verbose: flagVerbose,
		Only:    flagOnly,
	})
}
