package worktree

import (
	"fmt"
	"strings"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
)

// noChangesSentinel is the exact git response meaning nothing was stashed.
// It is a no-op outcome, not a failure.
const noChangesSentinel = "No local changes to save"

// Snapshot represents one worktree's saved uncommitted state. Hash is the
// stash commit id, stable across any reordering of the stash list. Ref is
// the positional reference (e.g. stash@{1}) resolved immediately after
// capture; it may be empty if resolution failed, in which case the applied
// stash is kept rather than dropped. Branch is the branch the state came
// from, recorded for the stash message only.
type Snapshot struct {
	Hash   string
	Ref    string
	Branch string
}

// Stasher captures and restores uncommitted worktree state.
type Stasher struct {
	runner git.Runner
	prefix string
}

// NewStasher creates a Stasher. prefix is the stash message prefix; the
// message is a debugging aid for humans and is never parsed back.
func NewStasher(runner git.Runner, prefix string) *Stasher {
	if prefix == "" {
		prefix = "swap-stash"
	}
	return &Stasher{runner: runner, prefix: prefix}
}

// Capture stashes tracked and untracked modifications in dir. A nil
// Snapshot with a nil error means the worktree was clean. Capture happens
// before any destructive swap step, so a failure here leaves the repository
// untouched.
func (s *Stasher) Capture(dir, branch string) (*Snapshot, error) {
	message := fmt.Sprintf("%s-%s", s.prefix, branch)
	output, err := s.runner.Run(dir, "stash", "push", "-u", "-m", message)
	if err != nil {
		return nil, &StashError{Dir: dir, Output: err.Error()}
	}
	if strings.TrimSpace(output.Combined()) == noChangesSentinel {
		return nil, nil
	}
	if !output.Success() {
		return nil, &StashError{Dir: dir, Output: output.Combined()}
	}

	rev, err := git.RunChecked(s.runner, dir,
		"failed to determine stash SHA",
		"rev-parse", "stash@{0}")
	if err != nil {
		return nil, err
	}
	hash := strings.TrimSpace(rev.Stdout)

	// stash@{0} is only valid until the next push; re-resolve the
	// positional ref by content identity so it survives later captures.
	ref, err := s.findStashRef(dir, hash)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Hash: hash, Ref: ref, Branch: branch}, nil
}

// findStashRef scans the stash list for the entry with the given commit
// hash and returns its current positional reference, or "" if absent.
func (s *Stasher) findStashRef(dir, hash string) (string, error) {
	output, err := git.RunChecked(s.runner, dir,
		"failed to list stashes",
		"stash", "list", "--format=%H:%gd")
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(output.Stdout, "\n") {
		commit, ref, found := strings.Cut(line, ":")
		if found && commit == hash {
			return strings.TrimSpace(ref), nil
		}
	}
	return "", nil
}

// ApplyAndRetire applies snapshot in dir and drops it once the apply is
// verified. Failures never abort the run: the branch swap is already
// complete by the time this runs, and a kept stash is safely recoverable.
// The returned warnings tell the operator about anything left behind.
func (s *Stasher) ApplyAndRetire(dir string, snapshot *Snapshot) []string {
	if snapshot == nil {
		return nil
	}

	var warnings []string

	output, err := s.runner.Run(dir, "stash", "apply", snapshot.Hash)
	if err != nil || !output.Success() {
		detail := output.Combined()
		if err != nil {
			detail = err.Error()
		}
		warnings = append(warnings,
			fmt.Sprintf("failed to apply stash %s to '%s': %s", snapshot.Hash, dir, detail),
			fmt.Sprintf("the stash has been kept; please resolve manually in '%s'", dir))
		return warnings
	}

	if snapshot.Ref == "" {
		warnings = append(warnings,
			fmt.Sprintf("could not determine stash reference for %s; the stash remains in the list", snapshot.Hash))
		return warnings
	}

	drop, err := s.runner.Run(dir, "stash", "drop", snapshot.Ref)
	if err != nil || !drop.Success() {
		detail := drop.Combined()
		if err != nil {
			detail = err.Error()
		}
		warnings = append(warnings,
			fmt.Sprintf("failed to drop applied stash %s: %s", snapshot.Ref, detail))
	}

	return warnings
}
