package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/subsync/internal/cli/ui"
	"github.com/aki/subsync/internal/core/config"
	"github.com/aki/subsync/internal/core/git"
	"github.com/aki/subsync/internal/core/lock"
	"github.com/aki/subsync/internal/core/sync"
)

// Flags shared by the save and update verbs.
var (
	flagDir     string
	flagOnly    []string
	flagDryRun  bool
	flagVerbose bool
)

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&flagOnly, "only", nil, "Process only this target path (repeatable; replaces the configured list)")
	cmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Print mutating commands instead of running them")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Echo each git command before running it")
}

// loadManager locates the config root and loads the target list.
func loadManager() (*config.Manager, *config.Config, error) {
	root := flagDir
	if root == "" {
		found, err := config.FindRoot()
		if err != nil {
			return nil, nil, err
		}
		root = found
	}

	m := config.NewManager(root)
	cfg, err := m.Load()
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

// buildTargets resolves configured targets to absolute paths.
func buildTargets(m *config.Manager, cfg *config.Config) []sync.Target {
	targets := make([]sync.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, sync.Target{
			Name: t.DisplayName(),
			Path: m.ResolveTarget(t),
		})
	}
	return targets
}

// buildClient assembles the git client for this run: system git, optionally
// echoing commands, optionally wrapped so mutations only print.
func buildClient() git.Client {
	var echo io.Writer
	if flagVerbose {
		echo = os.Stderr
	}

	var client git.Client = git.NewSystemClient(echo)
	if flagDryRun {
		client = git.NewDryRunClient(client, os.Stdout)
	}
	return client
}

// runDispatch is the shared body of the save and update verbs.
func runDispatch(cmd *cobra.Command, action sync.Action, opts sync.Options) error {
	m, cfg, err := loadManager()
	if err != nil {
		return err
	}

	// A dry run mutates nothing, so concurrent runs are harmless.
	if !flagDryRun {
		runLock := lock.New(m.Root())
		if err := runLock.Acquire(); err != nil {
			return err
		}
		defer runLock.Release() //nolint:errcheck
	}

	d := sync.NewDispatcher(buildClient(), CreateLogger())
	d.OnResult = ui.PrintResult

	summary, err := d.Run(cmd.Context(), action, buildTargets(m, cfg), opts)
	if err != nil {
		return err
	}

	return reportSummary(cmd, summary)
}

// errTargetsFailed forces a non-zero exit after a partial failure. The
// summary has already told the user what failed, so cobra's own error
// printing is silenced.
var errTargetsFailed = errors.New("one or more targets failed")

func reportSummary(cmd *cobra.Command, summary *sync.Summary) error {
	ui.PrintSummary(summary)
	if summary.Failed() {
		cmd.SilenceErrors = true
		return errTargetsFailed
	}
	return nil
}
