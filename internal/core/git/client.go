// Package git provides the narrow git surface subsync needs: a handful of
// read-only predicates answered via go-git, and mutating operations run
// through the system git binary. The sync dispatcher only sees the Client
// interface, so its state machines can be tested against a fake.
package git

import "errors"

var (
	// ErrDetachedHead is returned when the repository HEAD does not point
	// at a named branch.
	ErrDetachedHead = errors.New("detached HEAD")

	// ErrNothingToCommit is returned by Commit when the working tree has
	// no staged changes.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNotFastForward is returned by PullFastForward when local and
	// remote history have diverged.
	ErrNotFastForward = errors.New("not a fast-forward")
)

// Client is the logical git operation surface used by the dispatcher.
// Every method operates on a single working copy identified by dir.
type Client interface {
	// IsRepo reports whether dir is a git working copy.
	IsRepo(dir string) bool

	// CurrentBranch returns the checked-out branch name, or
	// ErrDetachedHead when HEAD is detached.
	CurrentBranch(dir string) (string, error)

	// HasRemote reports whether a remote with the given name is configured.
	HasRemote(dir, name string) (bool, error)

	// HasUpstream reports whether the current branch has an upstream
	// tracking branch configured.
	HasUpstream(dir string) (bool, error)

	// Status returns a read-only snapshot of the working copy.
	Status(dir string) (*StatusInfo, error)

	// StageAll stages every change in the working copy, deletions included.
	StageAll(dir string) error

	// Commit commits staged changes; ErrNothingToCommit when there are none.
	Commit(dir, message string) error

	// Push pushes the current branch to its configured upstream.
	Push(dir string) error

	// PushSetUpstream pushes branch to origin and records it as upstream.
	PushSetUpstream(dir, branch string) error

	// FetchPrune fetches all remotes, pruning stale remote-tracking refs.
	FetchPrune(dir string) error

	// ResetHard discards all local modifications, resetting to the
	// current branch tip.
	ResetHard(dir string) error

	// PullFastForward pulls with fast-forward-only semantics;
	// ErrNotFastForward when history has diverged.
	PullFastForward(dir string) error

	// Clone clones url into dir.
	Clone(url, dir string) error
}

// StatusInfo is a read-only snapshot of a working copy, used by the
// status command.
type StatusInfo struct {
	Branch    string // empty when detached
	Detached  bool
	Clean     bool
	HasOrigin bool
}
