// Package sync implements the per-directory state machines behind the
// save and update verbs. Targets are visited strictly in declaration
// order; a failure on one target never stops the rest.
package sync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aki/subsync/internal/core/git"
	"github.com/aki/subsync/internal/core/logger"
)

// OriginRemote is the only remote subsync pushes to or pulls from.
const OriginRemote = "origin"

// Dispatcher applies an action to a list of targets, one at a time.
type Dispatcher struct {
	client git.Client
	log    logger.Logger

	// OnResult, when non-nil, receives each target's result as soon as
	// that target finishes, before the next one is started.
	OnResult func(Result)
}

// NewDispatcher creates a dispatcher. The client decides how git
// operations actually run (system git, dry-run wrapper, or a test fake).
func NewDispatcher(client git.Client, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{client: client, log: log}
}

// Run applies action to every target in order and returns the aggregate
// summary. The returned error is non-nil only for invalid input or a
// cancelled context; per-target failures live in the summary.
func (d *Dispatcher) Run(ctx context.Context, action Action, targets []Target, opts Options) (*Summary, error) {
	switch action {
	case ActionSave, ActionUpdate:
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}

	targets = effectiveTargets(targets, opts)
	if len(targets) == 0 {
		return nil, errors.New("no targets to process")
	}

	summary := &Summary{}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := d.runOne(action, t, opts)
		summary.Results = append(summary.Results, result)
		if d.OnResult != nil {
			d.OnResult(result)
		}
	}
	return summary, nil
}

// effectiveTargets applies the --only override: supplied paths replace the
// configured list entirely, in the order given.
func effectiveTargets(targets []Target, opts Options) []Target {
	if len(opts.Only) == 0 {
		return targets
	}
	only := make([]Target, 0, len(opts.Only))
	for _, p := range opts.Only {
		only = append(only, Target{Name: p, Path: p})
	}
	return only
}

func (d *Dispatcher) runOne(action Action, t Target, opts Options) Result {
	log := d.log.With("target", t.Name)

	info, err := os.Stat(t.Path)
	if err != nil || !info.IsDir() {
		log.Info("directory missing, skipping")
		return Result{Target: t, Outcome: OutcomeSkippedMissing, Detail: "directory does not exist"}
	}

	if !d.client.IsRepo(t.Path) {
		log.Info("not a git repository, skipping")
		return Result{Target: t, Outcome: OutcomeSkippedNotRepo, Detail: "not a git repository"}
	}

	switch action {
	case ActionSave:
		return d.save(t, opts, log)
	default:
		return d.update(t, log)
	}
}

// save stages everything, commits best-effort, then pushes according to
// the remote and upstream state of the target.
func (d *Dispatcher) save(t Target, opts Options, log logger.Logger) Result {
	if err := d.client.StageAll(t.Path); err != nil {
		log.Error("stage failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	committed := true
	if err := d.client.Commit(t.Path, opts.Message); err != nil {
		if !errors.Is(err, git.ErrNothingToCommit) {
			log.Error("commit failed", "error", err)
			return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
		}
		// Expected no-op; the push step still runs.
		committed = false
		log.Info("nothing to commit")
	}

	hasOrigin, err := d.client.HasRemote(t.Path, OriginRemote)
	if err != nil {
		log.Error("remote lookup failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}
	if !hasOrigin {
		log.Info("no origin remote, push skipped")
		return Result{Target: t, Outcome: OutcomeSucceeded, Detail: saveDetail(committed, "no origin remote, push skipped")}
	}

	hasUpstream, err := d.client.HasUpstream(t.Path)
	if err != nil {
		log.Error("upstream lookup failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	if hasUpstream {
		if err := d.client.Push(t.Path); err != nil {
			log.Error("push failed", "error", err)
			return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
		}
		log.Info("pushed")
		return Result{Target: t, Outcome: OutcomeSucceeded, Detail: saveDetail(committed, "pushed")}
	}

	branch, err := d.client.CurrentBranch(t.Path)
	if err != nil || branch == "" {
		if err != nil && !errors.Is(err, git.ErrDetachedHead) {
			log.Error("branch lookup failed", "error", err)
			return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
		}
		// Nothing to push to; the commit (if any) stands.
		log.Warn("detached HEAD, push skipped; check out a branch to push")
		return Result{Target: t, Outcome: OutcomeSucceeded,
			Detail: saveDetail(committed, "detached HEAD, push skipped (check out a branch to push)")}
	}

	if err := d.client.PushSetUpstream(t.Path, branch); err != nil {
		log.Error("push failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}
	log.Info("pushed", "upstream", OriginRemote+"/"+branch)
	return Result{Target: t, Outcome: OutcomeSucceeded,
		Detail: saveDetail(committed, fmt.Sprintf("pushed, upstream set to %s/%s", OriginRemote, branch))}
}

func saveDetail(committed bool, rest string) string {
	if committed {
		return "committed, " + rest
	}
	return "nothing to commit, " + rest
}

// update discards local state and fast-forwards to the remote.
func (d *Dispatcher) update(t Target, log logger.Logger) Result {
	_, err := d.client.CurrentBranch(t.Path)
	if err != nil {
		if errors.Is(err, git.ErrDetachedHead) {
			log.Warn("detached HEAD, skipping; check out a branch before updating")
			return Result{Target: t, Outcome: OutcomeSkippedDetached,
				Detail: "detached HEAD (check out a branch before updating)"}
		}
		log.Error("branch lookup failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	if err := d.client.FetchPrune(t.Path); err != nil {
		log.Error("fetch failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	if err := d.client.ResetHard(t.Path); err != nil {
		log.Error("reset failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	hasOrigin, err := d.client.HasRemote(t.Path, OriginRemote)
	if err != nil {
		log.Error("remote lookup failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}
	if !hasOrigin {
		log.Info("no origin remote, pull skipped")
		return Result{Target: t, Outcome: OutcomeSucceeded, Detail: "reset, no origin remote, pull skipped"}
	}

	if err := d.client.PullFastForward(t.Path); err != nil {
		if errors.Is(err, git.ErrNotFastForward) {
			log.Error("fast-forward not possible, history has diverged")
			return Result{Target: t, Outcome: OutcomeFailed,
				Detail: "fast-forward not possible, history has diverged"}
		}
		log.Error("pull failed", "error", err)
		return Result{Target: t, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	log.Info("updated")
	return Result{Target: t, Outcome: OutcomeSucceeded, Detail: "reset and fast-forwarded"}
}
