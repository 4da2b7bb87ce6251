package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/subsync/internal/cli/ui"
	"github.com/aki/subsync/internal/core/config"
)

var flagClone bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter subsync.yaml in the current directory",
	Long: `Init writes a starter configuration file. It refuses to overwrite an
existing one.

With --clone, configured targets that do not exist on disk and carry a
url are cloned into place, bootstrapping a fresh checkout of the tree.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagClone, "clone", false, "Clone configured targets that are missing on disk")
	initCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Print clone commands instead of running them")
	initCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Echo each git command before running it")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := flagDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = cwd
	}

	m := config.NewManager(root)

	if !m.IsInitialized() {
		if flagClone {
			return fmt.Errorf("nothing to clone: no %s at %s", config.ConfigFile, root)
		}
		starter := config.DefaultConfig()
		starter.Targets = []config.Target{
			{Path: "repos/example", URL: "git@example.com:org/example.git"},
		}
		if err := m.Save(starter); err != nil {
			return err
		}
		ui.Success("wrote %s", m.ConfigPath())
		ui.Info("edit the targets list, then run 'subsync status'")
		return nil
	}

	if !flagClone {
		return fmt.Errorf("%s already exists, refusing to overwrite", m.ConfigPath())
	}

	cfg, err := m.Load()
	if err != nil {
		return err
	}

	client := buildClient()
	cloned := 0
	for _, t := range cfg.Targets {
		path := m.ResolveTarget(t)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if t.URL == "" {
			ui.Warning("%s is missing but has no url, skipping", t.DisplayName())
			continue
		}
		if err := client.Clone(t.URL, path); err != nil {
			return fmt.Errorf("clone %s: %w", t.DisplayName(), err)
		}
		ui.Success("cloned %s", t.DisplayName())
		cloned++
	}

	if cloned == 0 {
		ui.Info("all targets already present")
	}
	return nil
}
