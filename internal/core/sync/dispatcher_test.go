package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/subsync/internal/core/git"
)

// fakeRepo configures the state one directory reports to the dispatcher.
type fakeRepo struct {
	isRepo          bool
	branch          string // empty means detached
	hasOrigin       bool
	hasUpstream     bool
	nothingToCommit bool
	pushErr         error
	pullErr         error
	fetchErr        error
}

// fakeClient is an in-memory git.Client that records every call.
type fakeClient struct {
	repos map[string]*fakeRepo
	calls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{repos: map[string]*fakeRepo{}}
}

func (c *fakeClient) record(op, dir string) {
	c.calls = append(c.calls, op+" "+filepath.Base(dir))
}

func (c *fakeClient) repo(dir string) *fakeRepo {
	if r, ok := c.repos[dir]; ok {
		return r
	}
	return &fakeRepo{}
}

func (c *fakeClient) IsRepo(dir string) bool {
	c.record("IsRepo", dir)
	return c.repo(dir).isRepo
}

func (c *fakeClient) CurrentBranch(dir string) (string, error) {
	c.record("CurrentBranch", dir)
	if b := c.repo(dir).branch; b != "" {
		return b, nil
	}
	return "", git.ErrDetachedHead
}

func (c *fakeClient) HasRemote(dir, name string) (bool, error) {
	c.record("HasRemote", dir)
	return c.repo(dir).hasOrigin, nil
}

func (c *fakeClient) HasUpstream(dir string) (bool, error) {
	c.record("HasUpstream", dir)
	return c.repo(dir).hasUpstream, nil
}

func (c *fakeClient) Status(dir string) (*git.StatusInfo, error) {
	c.record("Status", dir)
	r := c.repo(dir)
	return &git.StatusInfo{Branch: r.branch, Detached: r.branch == "", HasOrigin: r.hasOrigin, Clean: true}, nil
}

func (c *fakeClient) StageAll(dir string) error {
	c.record("StageAll", dir)
	return nil
}

func (c *fakeClient) Commit(dir, message string) error {
	c.record(fmt.Sprintf("Commit(%s)", message), dir)
	if c.repo(dir).nothingToCommit {
		return git.ErrNothingToCommit
	}
	return nil
}

func (c *fakeClient) Push(dir string) error {
	c.record("Push", dir)
	return c.repo(dir).pushErr
}

func (c *fakeClient) PushSetUpstream(dir, branch string) error {
	c.record("PushSetUpstream("+branch+")", dir)
	return c.repo(dir).pushErr
}

func (c *fakeClient) FetchPrune(dir string) error {
	c.record("FetchPrune", dir)
	return c.repo(dir).fetchErr
}

func (c *fakeClient) ResetHard(dir string) error {
	c.record("ResetHard", dir)
	return nil
}

func (c *fakeClient) PullFastForward(dir string) error {
	c.record("PullFastForward", dir)
	return c.repo(dir).pullErr
}

func (c *fakeClient) Clone(url, dir string) error {
	c.record("Clone", dir)
	return nil
}

var mutatingOps = []string{"StageAll", "Commit", "Push", "FetchPrune", "ResetHard", "PullFastForward", "Clone"}

// mutations returns only the calls that would change repository state.
func (c *fakeClient) mutations() []string {
	var out []string
	for _, call := range c.calls {
		for _, op := range mutatingOps {
			if strings.HasPrefix(call, op) {
				out = append(out, call)
				break
			}
		}
	}
	return out
}

// mkTarget creates a real directory so the missing-dir check passes.
func mkTarget(t *testing.T, name string) Target {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return Target{Name: name, Path: dir}
}

func run(t *testing.T, c git.Client, action Action, targets []Target, opts Options) *Summary {
	t.Helper()
	d := NewDispatcher(c, nil)
	summary, err := d.Run(context.Background(), action, targets, opts)
	require.NoError(t, err)
	return summary
}

func TestRunRejectsUnknownAction(t *testing.T) {
	d := NewDispatcher(newFakeClient(), nil)
	_, err := d.Run(context.Background(), Action("destroy"), []Target{{Name: "x", Path: "x"}}, Options{})
	assert.ErrorContains(t, err, "unknown action")
}

func TestRunVisitsTargetsInOrder(t *testing.T) {
	c := newFakeClient()
	var targets []Target
	for _, name := range []string{"zeta", "alpha", "mid"} {
		tgt := mkTarget(t, name)
		c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main"}
		targets = append(targets, tgt)
	}

	summary := run(t, c, ActionUpdate, targets, Options{})
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "zeta", summary.Results[0].Target.Name)
	assert.Equal(t, "alpha", summary.Results[1].Target.Name)
	assert.Equal(t, "mid", summary.Results[2].Target.Name)
}

func TestOnlyReplacesTargetList(t *testing.T) {
	c := newFakeClient()
	configured := mkTarget(t, "configured")
	c.repos[configured.Path] = &fakeRepo{isRepo: true, branch: "main"}

	only := mkTarget(t, "only")
	c.repos[only.Path] = &fakeRepo{isRepo: true, branch: "main"}

	summary := run(t, c, ActionUpdate, []Target{configured}, Options{Only: []string{only.Path}})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, only.Path, summary.Results[0].Target.Path)

	// The configured target must not have been touched at all.
	for _, call := range c.calls {
		assert.NotContains(t, call, "configured")
	}
}

func TestMissingDirectoryIsSkippedNotFailed(t *testing.T) {
	c := newFakeClient()
	missing := Target{Name: "gone", Path: filepath.Join(t.TempDir(), "gone")}

	summary := run(t, c, ActionSave, []Target{missing}, Options{Message: "x"})
	require.Len(t, summary.Results, 1)
	assert.Equal(t, OutcomeSkippedMissing, summary.Results[0].Outcome)
	assert.Equal(t, 0, summary.ExitCode())
	assert.Empty(t, c.calls, "a missing directory must not be probed further")
}

func TestNonRepoDirectoryIsSkipped(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "plaindir")

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeSkippedNotRepo, summary.Results[0].Outcome)
	assert.Empty(t, c.mutations())
}

func TestSaveWithUpstreamPushes(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true, hasUpstream: true}

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)
	assert.Contains(t, c.calls, "StageAll app")
	assert.Contains(t, c.calls, "Commit(x) app")
	assert.Contains(t, c.calls, "Push app")
	assert.NotContains(t, c.calls, "PushSetUpstream(main) app")
}

func TestSaveWithoutUpstreamSetsUpstream(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "feature", hasOrigin: true}

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)
	assert.Contains(t, c.calls, "PushSetUpstream(feature) app")
	assert.Contains(t, summary.Results[0].Detail, "origin/feature")
}

func TestSaveNoRemoteSucceedsWithoutPush(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "local")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main"}

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)
	assert.Contains(t, summary.Results[0].Detail, "push skipped")
	for _, call := range c.calls {
		assert.NotContains(t, call, "Push")
	}
}

func TestSaveNothingToCommitStillPushes(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true, hasUpstream: true, nothingToCommit: true}

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)
	assert.Contains(t, summary.Results[0].Detail, "nothing to commit")
	assert.Contains(t, c.calls, "Push app")
}

func TestSaveDetachedHeadSkipsPushWithGuidance(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, hasOrigin: true} // detached, no upstream

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome, "detached push skip is not a hard failure")
	assert.Contains(t, summary.Results[0].Detail, "check out a branch")
	for _, call := range c.calls {
		assert.NotContains(t, call, "Push")
	}
}

func TestSavePushFailure(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true, hasUpstream: true,
		pushErr: errors.New("rejected")}

	summary := run(t, c, ActionSave, []Target{tgt}, Options{Message: "x"})
	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestUpdateDetachedHeadSkipsWithoutMutation(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, hasOrigin: true} // detached

	summary := run(t, c, ActionUpdate, []Target{tgt}, Options{})
	assert.Equal(t, OutcomeSkippedDetached, summary.Results[0].Outcome)
	assert.Equal(t, 0, summary.ExitCode())
	assert.Empty(t, c.mutations(), "a detached target must not be mutated")
}

func TestUpdateNoRemoteSkipsPull(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "local")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main"}

	summary := run(t, c, ActionUpdate, []Target{tgt}, Options{})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)
	assert.Contains(t, c.calls, "FetchPrune local")
	assert.Contains(t, c.calls, "ResetHard local")
	assert.NotContains(t, c.calls, "PullFastForward local")
	assert.Equal(t, 0, summary.ExitCode())
}

func TestUpdateFetchBeforeReset(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true}

	run(t, c, ActionUpdate, []Target{tgt}, Options{})

	fetchIdx, resetIdx := -1, -1
	for i, call := range c.calls {
		switch call {
		case "FetchPrune app":
			fetchIdx = i
		case "ResetHard app":
			resetIdx = i
		}
	}
	require.NotEqual(t, -1, fetchIdx)
	require.NotEqual(t, -1, resetIdx)
	assert.Less(t, fetchIdx, resetIdx)
}

func TestUpdateDivergedHistoryFails(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true,
		pullErr: fmt.Errorf("%w: local ahead", git.ErrNotFastForward)}

	summary := run(t, c, ActionUpdate, []Target{tgt}, Options{})
	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.Contains(t, summary.Results[0].Detail, "diverged")
	assert.Equal(t, 1, summary.ExitCode())
}

func TestFailureDoesNotStopLaterTargets(t *testing.T) {
	c := newFakeClient()
	bad := mkTarget(t, "bad")
	c.repos[bad.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true, pullErr: git.ErrNotFastForward}
	good := mkTarget(t, "good")
	c.repos[good.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true}

	summary := run(t, c, ActionUpdate, []Target{bad, good}, Options{})
	require.Len(t, summary.Results, 2)
	assert.Equal(t, OutcomeFailed, summary.Results[0].Outcome)
	assert.Equal(t, OutcomeSucceeded, summary.Results[1].Outcome)
	assert.Equal(t, 1, summary.ExitCode())
}

// Scenario from the save contract: a healthy repo plus a missing path.
func TestScenarioSaveWithMissingSibling(t *testing.T) {
	c := newFakeClient()
	a := mkTarget(t, "A")
	c.repos[a.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true, hasUpstream: true}
	b := Target{Name: "B", Path: filepath.Join(t.TempDir(), "B")}

	summary := run(t, c, ActionSave, []Target{a, b}, Options{Message: "x"})
	require.Len(t, summary.Results, 2)
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)
	assert.Contains(t, c.calls, "Commit(x) A")
	assert.Contains(t, c.calls, "Push A")
	assert.Equal(t, OutcomeSkippedMissing, summary.Results[1].Outcome)
	assert.Equal(t, 0, summary.ExitCode())
}

func TestDryRunMakesSameDecisionsWithoutMutating(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main", hasOrigin: true, hasUpstream: true}

	var buf bytes.Buffer
	dry := git.NewDryRunClient(c, &buf)

	summary := run(t, dry, ActionSave, []Target{tgt}, Options{Message: "x", DryRun: true})
	assert.Equal(t, OutcomeSucceeded, summary.Results[0].Outcome)

	assert.Empty(t, c.mutations(), "dry-run must not mutate")
	assert.Contains(t, buf.String(), "add -A")
	assert.Contains(t, buf.String(), "push")
}

func TestOnResultStreamsAsTargetsComplete(t *testing.T) {
	c := newFakeClient()
	first := mkTarget(t, "first")
	c.repos[first.Path] = &fakeRepo{isRepo: true, branch: "main"}
	second := mkTarget(t, "second")
	c.repos[second.Path] = &fakeRepo{isRepo: true, branch: "main"}

	d := NewDispatcher(c, nil)
	// Record callbacks on the same timeline as the client calls, so the
	// ordering between them is observable.
	d.OnResult = func(r Result) {
		c.calls = append(c.calls, "OnResult "+r.Target.Name)
	}

	_, err := d.Run(context.Background(), ActionUpdate, []Target{first, second}, Options{})
	require.NoError(t, err)

	firstResult, secondStart := -1, -1
	for i, call := range c.calls {
		switch call {
		case "OnResult first":
			firstResult = i
		case "IsRepo second":
			secondStart = i
		}
	}
	require.NotEqual(t, -1, firstResult)
	require.NotEqual(t, -1, secondStart)
	assert.Less(t, firstResult, secondStart, "first target's result must be delivered before the second target starts")
	assert.Equal(t, "OnResult second", c.calls[len(c.calls)-1])
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	c := newFakeClient()
	tgt := mkTarget(t, "app")
	c.repos[tgt.Path] = &fakeRepo{isRepo: true, branch: "main"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDispatcher(c, nil)
	_, err := d.Run(ctx, ActionUpdate, []Target{tgt}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.calls)
}
