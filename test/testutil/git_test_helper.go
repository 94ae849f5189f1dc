package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGitRepository is a throwaway git repository for integration tests,
// initialized on a "main" branch regardless of the host git's defaults.
type TestGitRepository struct {
	TempDir     string
	RepoDir     string
	ProjectName string
	t           *testing.T
}

// NewTestGitRepository creates and initializes a test repository.
func NewTestGitRepository(t *testing.T, projectName string) *TestGitRepository {
	tempDir := t.TempDir()
	repoDir := filepath.Join(tempDir, projectName)

	repo := &TestGitRepository{
		TempDir:     tempDir,
		RepoDir:     repoDir,
		ProjectName: projectName,
		t:           t,
	}

	repo.initializeRepo()
	return repo
}

func (r *TestGitRepository) initializeRepo() {
	require.NoError(r.t, os.MkdirAll(r.RepoDir, 0755))

	r.Git(r.RepoDir, "init")
	// Pin the initial branch name before the first commit.
	r.Git(r.RepoDir, "symbolic-ref", "HEAD", "refs/heads/main")

	r.Git(r.RepoDir, "config", "user.name", "Test User")
	r.Git(r.RepoDir, "config", "user.email", "test@example.com")

	readmeFile := filepath.Join(r.RepoDir, "README.md")
	require.NoError(r.t, os.WriteFile(readmeFile, []byte("# Test Project"), 0644))

	r.Git(r.RepoDir, "add", "README.md")
	r.Git(r.RepoDir, "commit", "-m", "Initial commit")
}

// CreateFile creates a file in the main repository directory.
func (r *TestGitRepository) CreateFile(relativePath, content string) {
	fullPath := filepath.Join(r.RepoDir, relativePath)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(r.t, os.WriteFile(fullPath, []byte(content), 0644))
}

// CommitAll commits all changes in the main repository directory.
func (r *TestGitRepository) CommitAll(message string) {
	r.Git(r.RepoDir, "add", ".")
	r.Git(r.RepoDir, "commit", "-m", message)
}

// AddWorktree creates a worktree at path on a new branch.
func (r *TestGitRepository) AddWorktree(path, branch string) {
	r.Git(r.RepoDir, "worktree", "add", "-b", branch, path)
}

// CurrentBranch returns the symbolic branch name of the worktree at dir.
func (r *TestGitRepository) CurrentBranch(dir string) string {
	return r.GitOutput(dir, "symbolic-ref", "--short", "HEAD")
}

// StashList returns the trimmed output of 'git stash list' in dir.
func (r *TestGitRepository) StashList(dir string) string {
	return r.GitOutput(dir, "stash", "list")
}

// Git runs a git command in dir and fails the test on error.
func (r *TestGitRepository) Git(dir string, args ...string) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git command failed: git %v\nOutput: %s\nError: %v", args, output, err)
	}
}

// GitOutput runs a git command in dir and returns its trimmed stdout.
func (r *TestGitRepository) GitOutput(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(r.t, err)
	return strings.TrimSpace(string(output))
}
