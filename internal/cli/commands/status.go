package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/subsync/internal/cli/ui"
	"github.com/aki/subsync/internal/core/git"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every configured target",
	Long: `Status reports each target's branch, whether the working copy is clean
and whether an origin remote is configured. It is read-only.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, cfg, err := loadManager()
	if err != nil {
		return err
	}

	client := git.NewSystemClient(nil)
	tbl := ui.NewTable("TARGET", "BRANCH", "WORKTREE", "REMOTE")

	for _, t := range cfg.Targets {
		path := m.ResolveTarget(t)

		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			tbl.AddRow(t.DisplayName(), "-", "missing", "-")
			continue
		}
		if !client.IsRepo(path) {
			tbl.AddRow(t.DisplayName(), "-", "not a repo", "-")
			continue
		}

		st, err := client.Status(path)
		if err != nil {
			return fmt.Errorf("status of %s: %w", t.DisplayName(), err)
		}

		branch := st.Branch
		if st.Detached {
			branch = "(detached)"
		}
		worktree := "clean"
		if !st.Clean {
			worktree = "dirty"
		}
		remote := "origin"
		if !st.HasOrigin {
			remote = "none"
		}
		tbl.AddRow(t.DisplayName(), branch, worktree, remote)
	}

	tbl.Print()
	return nil
}
