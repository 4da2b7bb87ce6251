package sync

// Outcome is the per-target result of applying an action. It is a closed
// set so callers can exhaustively handle every case.
type Outcome int

const (
	// OutcomeSucceeded means the action completed on the target.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed means an operation on the target failed.
	OutcomeFailed
	// OutcomeSkippedMissing means the target directory does not exist.
	OutcomeSkippedMissing
	// OutcomeSkippedNotRepo means the directory is not a git working copy.
	OutcomeSkippedNotRepo
	// OutcomeSkippedDetached means HEAD is detached and the action was not
	// applied.
	OutcomeSkippedDetached
	// OutcomeSkippedNoRemote means the target has no origin remote and the
	// remote-facing step was skipped.
	OutcomeSkippedNoRemote
)

// String returns the stable identifier for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkippedMissing:
		return "skipped-missing"
	case OutcomeSkippedNotRepo:
		return "skipped-not-a-repo"
	case OutcomeSkippedDetached:
		return "skipped-detached-head"
	case OutcomeSkippedNoRemote:
		return "skipped-no-remote"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome should poison the aggregate exit status.
func (o Outcome) Failed() bool {
	return o == OutcomeFailed
}

// Result is the outcome of one target.
type Result struct {
	Target  Target
	Outcome Outcome
	// Detail is a human-readable note: what was done, or why a step was
	// skipped, or corrective guidance.
	Detail string
}

// Summary aggregates the results of one run.
type Summary struct {
	Results []Result
}

// Failed reports whether any target ended in OutcomeFailed.
func (s *Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Outcome.Failed() {
			return true
		}
	}
	return false
}

// ExitCode is zero unless some target failed.
func (s *Summary) ExitCode() int {
	if s.Failed() {
		return 1
	}
	return 0
}

// Count returns how many targets ended with the given outcome.
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}
