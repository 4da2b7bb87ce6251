package git

import (
	"fmt"
	"io"
)

// DryRunClient wraps a Client so that read-only predicates still run while
// every mutating operation is replaced by a printed description of the git
// command that would have run. This keeps dry-run decisions identical to a
// real run without touching disk or network state.
type DryRunClient struct {
	inner Client
	out   io.Writer
}

// NewDryRunClient wraps inner, printing would-run commands to out.
func NewDryRunClient(inner Client, out io.Writer) *DryRunClient {
	return &DryRunClient{inner: inner, out: out}
}

var _ Client = (*DryRunClient)(nil)

func (c *DryRunClient) IsRepo(dir string) bool { return c.inner.IsRepo(dir) }

func (c *DryRunClient) CurrentBranch(dir string) (string, error) {
	return c.inner.CurrentBranch(dir)
}

func (c *DryRunClient) HasRemote(dir, name string) (bool, error) {
	return c.inner.HasRemote(dir, name)
}

func (c *DryRunClient) HasUpstream(dir string) (bool, error) {
	return c.inner.HasUpstream(dir)
}

func (c *DryRunClient) Status(dir string) (*StatusInfo, error) {
	return c.inner.Status(dir)
}

func (c *DryRunClient) StageAll(dir string) error {
	return c.wouldRun(dir, "add -A")
}

func (c *DryRunClient) Commit(dir, message string) error {
	return c.wouldRun(dir, fmt.Sprintf("commit -m %q", message))
}

func (c *DryRunClient) Push(dir string) error {
	return c.wouldRun(dir, "push")
}

func (c *DryRunClient) PushSetUpstream(dir, branch string) error {
	return c.wouldRun(dir, "push -u origin "+branch)
}

func (c *DryRunClient) FetchPrune(dir string) error {
	return c.wouldRun(dir, "fetch --all --prune")
}

func (c *DryRunClient) ResetHard(dir string) error {
	return c.wouldRun(dir, "reset --hard")
}

func (c *DryRunClient) PullFastForward(dir string) error {
	return c.wouldRun(dir, "pull --ff-only")
}

func (c *DryRunClient) Clone(url, dir string) error {
	fmt.Fprintf(c.out, "[dry-run] git clone %s %s\n", url, dir)
	return nil
}

func (c *DryRunClient) wouldRun(dir, args string) error {
	fmt.Fprintf(c.out, "[dry-run] git -C %s %s\n", dir, args)
	return nil
}
