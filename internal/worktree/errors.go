package worktree

import (
	"errors"
	"fmt"
)

// ErrSameWorktree is returned when the destination directory and the
// worktree holding the source branch canonicalize to the same path.
var ErrSameWorktree = errors.New("source and destination directories are the same. Nothing to swap")

// BranchNotFoundError indicates no worktree has the requested branch
// checked out.
type BranchNotFoundError struct {
	Branch string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("could not find worktree for branch '%s'", e.Branch)
}

// StaleWorktreeError indicates the worktree metadata names a directory that
// no longer exists on disk. Distinct from BranchNotFoundError: the branch is
// known, its worktree record is stale.
type StaleWorktreeError struct {
	Branch string
	Path   string
}

func (e *StaleWorktreeError) Error() string {
	return fmt.Sprintf("source directory '%s' (for branch '%s') does not exist", e.Path, e.Branch)
}

// DetachedHeadError indicates a worktree is not on a named branch. The
// destination must be on a named branch, since the swap later places the
// source worktree onto that name.
type DetachedHeadError struct {
	Dir string
}

func (e *DetachedHeadError) Error() string {
	return fmt.Sprintf("could not determine branch for '%s'", e.Dir)
}

// StashError indicates a stash capture failed before any destructive step;
// the repository is still in its original state.
type StashError struct {
	Dir    string
	Output string
}

func (e *StashError) Error() string {
	return fmt.Sprintf("failed to create stash in '%s': %s", e.Dir, e.Output)
}

// CriticalStateError is the one unrecoverable outcome: the destination has
// already been switched to the source branch, but switching the source
// worktree failed, leaving it detached. No automatic repair is attempted;
// the message names the exact commands the operator must run.
type CriticalStateError struct {
	DestinationDir    string
	SourceDir         string
	DestinationBranch string
	SourceBranch      string
	Cause             error
}

func (e *CriticalStateError) Error() string {
	return fmt.Sprintf(
		"Error: %v\nCRITICAL STATE: '%s' is on '%s', but '%s' is still detached.\nPlease manually run:\n  git -C '%s' switch '%s'\n  git -C '%s' switch '%s'",
		e.Cause,
		e.DestinationDir, e.SourceBranch, e.SourceDir,
		e.DestinationDir, e.SourceBranch,
		e.SourceDir, e.DestinationBranch,
	)
}

func (e *CriticalStateError) Unwrap() error {
	return e.Cause
}
