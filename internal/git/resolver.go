package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveWorktreeDir validates that path exists and is a directory, then
// canonicalizes it (symlinks and relative segments resolved) so that later
// identity comparisons between worktree paths are reliable.
func ResolveWorktreeDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("destination directory '%s' does not exist", path)
		}
		return "", fmt.Errorf("failed to inspect '%s': %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("'%s' is not a directory", path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize '%s': %w", path, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize '%s': %w", path, err)
	}

	return abs, nil
}

// EnsureWorktree verifies that dir is inside a git working tree.
func EnsureWorktree(runner Runner, dir string) error {
	output, err := RunChecked(runner, dir,
		"failed to determine whether destination is a git worktree",
		"rev-parse", "--is-inside-work-tree")
	if err != nil {
		return err
	}
	if strings.TrimSpace(output.Stdout) != "true" {
		return fmt.Errorf("'%s' is not inside a git worktree", dir)
	}
	return nil
}

// RepoRoot resolves the repository root shared by all worktrees: the parent
// of the common git directory, absolutized against dir when git reports it
// relative. Falls back to dir itself; the result is diagnostic-only.
func RepoRoot(runner Runner, dir string) (string, error) {
	output, err := RunChecked(runner, dir,
		"failed to determine repository root",
		"rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}

	gitDir := strings.TrimSpace(output.Stdout)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}

	root := filepath.Dir(gitDir)
	if root == "." || root == "" {
		root = dir
	}
	return root, nil
}
