package worktree

import (
	"fmt"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
)

// Logger is the slice of the CLI logger the swap protocol reports through.
// Step and Debug lines only appear in debug mode; Warning always prints.
type Logger interface {
	Step(step, total int, format string, args ...interface{})
	Debug(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

// Options describes one swap invocation.
type Options struct {
	DestinationDir string // directory of the worktree to move onto SourceBranch
	SourceBranch   string // branch whose worktree takes over the destination's branch
}

// Result describes a completed swap. Warnings collect non-fatal reapply
// issues; a non-empty Warnings still counts as success.
type Result struct {
	DestinationDir    string
	SourceDir         string
	DestinationBranch string // branch the destination was on, now on the source worktree
	SourceBranch      string // branch the source was on, now on the destination worktree
	RepoRoot          string
	Warnings          []string
}

// Swapper sequences the swap protocol: validate, capture, detach both,
// switch both, reapply. All git access goes through one Runner; the process
// holds no state across invocations.
type Swapper struct {
	runner  git.Runner
	locator *Locator
	stasher *Stasher
	log     Logger
}

// NewSwapper creates a Swapper. stashPrefix tags the stash messages created
// during the swap.
func NewSwapper(runner git.Runner, stashPrefix string, log Logger) *Swapper {
	return &Swapper{
		runner:  runner,
		locator: NewLocator(runner),
		stasher: NewStasher(runner, stashPrefix),
		log:     log,
	}
}

const totalSteps = 5

// Swap relocates the destination worktree onto the source branch and the
// source branch's worktree onto the destination's branch, carrying each
// worktree's uncommitted and untracked changes along.
//
// Failure semantics: anything before the first detach aborts with the
// repository unchanged. A failed source detach triggers a best-effort
// restore of the destination. A failed source switch after the destination
// switch succeeded is critical and is reported with explicit manual
// recovery commands; no automatic repair is attempted there.
func (s *Swapper) Swap(opts Options) (*Result, error) {
	destDir, err := git.ResolveWorktreeDir(opts.DestinationDir)
	if err != nil {
		return nil, err
	}
	if err := git.EnsureWorktree(s.runner, destDir); err != nil {
		return nil, err
	}

	repoRoot, err := git.RepoRoot(s.runner, destDir)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Operating in repository: %s", repoRoot)

	s.log.Step(1, totalSteps, "Fetching branch for destination directory '%s'...", destDir)
	destBranch, err := s.locator.CurrentBranch(destDir)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Found destination branch: '%s'", destBranch)

	s.log.Step(2, totalSteps, "Fetching directory for source branch '%s'...", opts.SourceBranch)
	srcDir, err := s.locator.FindWorktreeForBranch(destDir, opts.SourceBranch)
	if err != nil {
		return nil, err
	}
	srcDir, err = git.ResolveWorktreeDir(srcDir)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Found source directory: '%s'", srcDir)

	if destDir == srcDir {
		return nil, ErrSameWorktree
	}

	s.log.Step(3, totalSteps, "Stashing changes in both worktrees (including untracked files)...")
	destSnapshot, err := s.captureLogged(destDir, destBranch)
	if err != nil {
		return nil, err
	}
	srcSnapshot, err := s.captureLogged(srcDir, opts.SourceBranch)
	if err != nil {
		return nil, err
	}

	s.log.Step(4, totalSteps, "Swapping branches between worktrees...")
	if err := s.detach(destDir, destBranch); err != nil {
		return nil, err
	}
	if err := s.detach(srcDir, opts.SourceBranch); err != nil {
		s.log.Warning("Attempting to restore '%s' to '%s'...", destDir, destBranch)
		// Best effort only; the overall operation still fails.
		_, _ = s.runner.Run(destDir, "switch", destBranch)
		return nil, fmt.Errorf("failed to detach source worktree, aborting: %w", err)
	}
	s.log.Debug("Both worktrees detached. Proceeding with swap.")

	if err := s.switchBranch(destDir, opts.SourceBranch); err != nil {
		return nil, err
	}
	if err := s.switchBranch(srcDir, destBranch); err != nil {
		return nil, &CriticalStateError{
			DestinationDir:    destDir,
			SourceDir:         srcDir,
			DestinationBranch: destBranch,
			SourceBranch:      opts.SourceBranch,
			Cause:             err,
		}
	}

	s.log.Debug("Branch swap successful.")
	s.log.Debug("  '%s' is now on branch '%s'.", destDir, opts.SourceBranch)
	s.log.Debug("  '%s' is now on branch '%s'.", srcDir, destBranch)

	s.log.Step(5, totalSteps, "Applying stashes to their new locations...")
	result := &Result{
		DestinationDir:    destDir,
		SourceDir:         srcDir,
		DestinationBranch: destBranch,
		SourceBranch:      opts.SourceBranch,
		RepoRoot:          repoRoot,
	}
	result.Warnings = append(result.Warnings, s.reapplyLogged(destDir, srcSnapshot)...)
	result.Warnings = append(result.Warnings, s.reapplyLogged(srcDir, destSnapshot)...)

	s.log.Debug("Worktree swap complete.")
	return result, nil
}

func (s *Swapper) captureLogged(dir, branch string) (*Snapshot, error) {
	s.log.Debug("Stashing '%s' (branch: %s)...", dir, branch)
	snapshot, err := s.stasher.Capture(dir, branch)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		s.log.Debug("No changes to stash in '%s'.", dir)
	} else {
		s.log.Debug("Stashed changes from '%s' as %s.", dir, snapshot.Hash)
	}
	return snapshot, nil
}

func (s *Swapper) detach(dir, branch string) error {
	s.log.Debug("Detaching HEAD in '%s' (freeing '%s')...", dir, branch)
	_, err := git.RunChecked(s.runner, dir,
		"failed to detach worktree",
		"switch", "--detach")
	return err
}

func (s *Swapper) switchBranch(dir, branch string) error {
	s.log.Debug("Switching '%s' to '%s'...", dir, branch)
	_, err := git.RunChecked(s.runner, dir,
		"failed to switch worktree branch",
		"switch", branch)
	return err
}

func (s *Swapper) reapplyLogged(dir string, snapshot *Snapshot) []string {
	if snapshot == nil {
		s.log.Debug("No stash to apply to '%s'.", dir)
		return nil
	}
	s.log.Debug("Applying stash %s (from '%s') to '%s'...", snapshot.Hash, snapshot.Branch, dir)
	warnings := s.stasher.ApplyAndRetire(dir, snapshot)
	for _, warning := range warnings {
		s.log.Warning("%s", warning)
	}
	return warnings
}
