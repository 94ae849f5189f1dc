package worktree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
)

// Record is one parsed entry of 'git worktree list --porcelain'. An empty
// Branch means the worktree is detached and cannot match any lookup.
type Record struct {
	Path   string
	Branch string
}

// Locator maps branch names to worktree directories by querying git.
type Locator struct {
	runner git.Runner
}

// NewLocator creates a new Locator.
func NewLocator(runner git.Runner) *Locator {
	return &Locator{runner: runner}
}

// CurrentBranch returns the short symbolic name of the worktree's HEAD.
// A detached HEAD is an error: the swap needs a branch name to hand over.
func (l *Locator) CurrentBranch(dir string) (string, error) {
	output, err := git.RunChecked(l.runner, dir,
		"failed to determine destination branch",
		"symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", err
	}

	branch := strings.TrimSpace(output.Stdout)
	if branch == "" {
		return "", &DetachedHeadError{Dir: dir}
	}
	return branch, nil
}

// FindWorktreeForBranch returns the directory of the first worktree that has
// branch checked out. A record whose directory is missing on disk yields a
// StaleWorktreeError rather than a not-found.
func (l *Locator) FindWorktreeForBranch(dir, branch string) (string, error) {
	records, err := l.listRecords(dir)
	if err != nil {
		return "", err
	}

	for _, record := range records {
		if record.Branch == "" || record.Branch != branch {
			continue
		}
		path := normalizePath(dir, record.Path)
		if _, err := os.Stat(path); err != nil {
			return "", &StaleWorktreeError{Branch: branch, Path: path}
		}
		return path, nil
	}

	return "", &BranchNotFoundError{Branch: branch}
}

// ListBranches returns every branch checked out in any worktree, sorted and
// deduplicated. Used only by shell completion, not by the swap itself.
func (l *Locator) ListBranches(dir string) ([]string, error) {
	records, err := l.listRecords(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var branches []string
	for _, record := range records {
		if record.Branch == "" || seen[record.Branch] {
			continue
		}
		seen[record.Branch] = true
		branches = append(branches, record.Branch)
	}

	sort.Strings(branches)
	return branches, nil
}

func (l *Locator) listRecords(dir string) ([]Record, error) {
	output, err := git.RunChecked(l.runner, dir,
		"failed to list worktrees",
		"worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return ParseRecords(output.Stdout), nil
}

// ParseRecords parses porcelain worktree output: records separated
// by blank lines, 'worktree <path>' first, an optional 'branch <ref>' with
// the refs/heads/ prefix stripped. HEAD, bare, locked and prunable lines are
// ignored. The trailing record is flushed after input ends, since git emits
// no blank line after the final block.
func ParseRecords(output string) []Record {
	var records []Record
	var current Record

	flush := func() {
		if current.Path != "" {
			records = append(records, current)
		}
		current = Record{}
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		if rest, ok := strings.CutPrefix(line, "worktree "); ok {
			current.Path = strings.TrimSpace(rest)
		} else if rest, ok := strings.CutPrefix(line, "branch "); ok {
			ref := strings.TrimSpace(rest)
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		}
	}
	flush()

	return records
}

// normalizePath absolutizes a worktree path reported relative to base.
func normalizePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
