package sync

import (
	"fmt"
	"time"
)

// Action selects which per-directory state machine the dispatcher applies.
type Action string

const (
	// ActionSave stages, commits and pushes local changes.
	ActionSave Action = "save"
	// ActionUpdate discards local changes and fast-forwards from the remote.
	ActionUpdate Action = "update"
)

// Target is one directory the dispatcher operates on.
type Target struct {
	// Name is the display name used in output and logs.
	Name string
	// Path is the absolute directory path.
	Path string
}

// Options holds the per-invocation configuration. Immutable for the
// duration of one Run.
type Options struct {
	// Message is the commit message for ActionSave.
	Message string
	// DryRun prints mutating commands instead of executing them.
	DryRun bool
	// Verbose echoes each git command before it runs. Both this and
	// DryRun are enforced by the git.Client the dispatcher is given;
	// they are carried here as part of the invocation record.
	Verbose bool
	// Only, when non-empty, replaces the configured target list entirely.
	Only []string
}

// DefaultMessage builds the commit message used when none is given.
func DefaultMessage(now time.Time) string {
	return fmt.Sprintf("sync at %s", now.Format(time.RFC3339))
}
