package git

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// SystemClient implements Client against real repositories. Predicates go
// through go-git; mutations shell out to the git binary, which handles
// credentials, hooks and transport exactly the way the user expects.
type SystemClient struct {
	// echo receives a "+ git ..." line before each external command when
	// non-nil (verbose mode).
	echo io.Writer
}

// NewSystemClient creates a SystemClient. echo may be nil.
func NewSystemClient(echo io.Writer) *SystemClient {
	return &SystemClient{echo: echo}
}

var _ Client = (*SystemClient)(nil)

// IsRepo reports whether dir is a git working copy.
func (c *SystemClient) IsRepo(dir string) bool {
	_, err := gogit.PlainOpen(dir)
	return err == nil
}

// CurrentBranch returns the checked-out branch, ErrDetachedHead otherwise.
// An unborn branch (fresh repo, no commits yet) still counts as a branch.
func (c *SystemClient) CurrentBranch(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}

	return "", ErrDetachedHead
}

// HasRemote reports whether the named remote is configured.
func (c *SystemClient) HasRemote(dir, name string) (bool, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	_, err = repo.Remote(name)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasUpstream reports whether the current branch tracks an upstream.
func (c *SystemClient) HasUpstream(dir string) (bool, error) {
	branch, err := c.CurrentBranch(dir)
	if err != nil {
		if errors.Is(err, ErrDetachedHead) {
			return false, nil
		}
		return false, err
	}

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	cfg, err := repo.Branch(branch)
	if errors.Is(err, gogit.ErrBranchNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return cfg.Remote != "" && cfg.Merge != "", nil
}

// Status returns a read-only snapshot of the working copy.
func (c *SystemClient) Status(dir string) (*StatusInfo, error) {
	info := &StatusInfo{}

	branch, err := c.CurrentBranch(dir)
	switch {
	case errors.Is(err, ErrDetachedHead):
		info.Detached = true
	case err != nil:
		return nil, err
	default:
		info.Branch = branch
	}

	hasOrigin, err := c.HasRemote(dir, "origin")
	if err != nil {
		return nil, err
	}
	info.HasOrigin = hasOrigin

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	info.Clean = status.IsClean()

	return info, nil
}

// StageAll stages every change, deletions included.
func (c *SystemClient) StageAll(dir string) error {
	_, err := c.run(dir, "add", "-A")
	return err
}

// Commit commits staged changes with the given message.
func (c *SystemClient) Commit(dir, message string) error {
	out, err := c.run(dir, "commit", "-m", message)
	if err != nil {
		if strings.Contains(out, "nothing to commit") ||
			strings.Contains(out, "nothing added to commit") {
			return ErrNothingToCommit
		}
		return err
	}
	return nil
}

// Push pushes the current branch to its configured upstream.
func (c *SystemClient) Push(dir string) error {
	_, err := c.run(dir, "push")
	return err
}

// PushSetUpstream pushes branch to origin and records the upstream.
func (c *SystemClient) PushSetUpstream(dir, branch string) error {
	_, err := c.run(dir, "push", "-u", "origin", branch)
	return err
}

// FetchPrune fetches all remotes, pruning stale remote-tracking refs.
func (c *SystemClient) FetchPrune(dir string) error {
	_, err := c.run(dir, "fetch", "--all", "--prune")
	return err
}

// ResetHard discards local modifications.
func (c *SystemClient) ResetHard(dir string) error {
	_, err := c.run(dir, "reset", "--hard")
	return err
}

// PullFastForward pulls with fast-forward-only semantics.
func (c *SystemClient) PullFastForward(dir string) error {
	out, err := c.run(dir, "pull", "--ff-only")
	if err != nil {
		lower := strings.ToLower(out + err.Error())
		if strings.Contains(lower, "fast-forward") || strings.Contains(lower, "diverg") {
			return fmt.Errorf("%w: %v", ErrNotFastForward, err)
		}
		return err
	}
	return nil
}

// Clone clones url into dir.
func (c *SystemClient) Clone(url, dir string) error {
	if c.echo != nil {
		fmt.Fprintf(c.echo, "+ git clone %s %s\n", url, dir)
	}
	cmd := exec.Command("git", "clone", url, dir)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone %s: %w: %s", url, err, strings.TrimSpace(buf.String()))
	}
	return nil
}

// run executes git with the given arguments inside dir, returning the
// combined output. The output is returned even on failure so callers can
// classify the error.
func (c *SystemClient) run(dir string, args ...string) (string, error) {
	if c.echo != nil {
		fmt.Fprintf(c.echo, "+ git -C %s %s\n", dir, strings.Join(args, " "))
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		return buf.String(), fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(buf.String()))
	}
	return buf.String(), nil
}
