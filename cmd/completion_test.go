package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	output git.Output
}

func (s stubRunner) Run(dir string, args ...string) (git.Output, error) {
	s.output.Command = strings.Join(args, " ")
	return s.output, nil
}

func TestCompleteSourceBranch(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	porcelain := "worktree /repos/main\nbranch refs/heads/main\n\n" +
		"worktree /repos/feature-a\nbranch refs/heads/feature/a\n\n" +
		"worktree /repos/feature-b\nbranch refs/heads/feature/b\n"

	t.Run("lists branches filtered by prefix", func(t *testing.T) {
		runner := stubRunner{output: git.Output{Stdout: porcelain}}

		candidates := completeSourceBranch(runner, dir, "feature/")
		assert.Equal(t, []string{"feature/a", "feature/b"}, candidates)
	})

	t.Run("empty prefix lists everything sorted", func(t *testing.T) {
		runner := stubRunner{output: git.Output{Stdout: porcelain}}

		candidates := completeSourceBranch(runner, dir, "")
		assert.Equal(t, []string{"feature/a", "feature/b", "main"}, candidates)
	})

	t.Run("bad destination directory yields no candidates", func(t *testing.T) {
		runner := stubRunner{output: git.Output{Stdout: porcelain}}

		candidates := completeSourceBranch(runner, filepath.Join(dir, "missing"), "")
		assert.Empty(t, candidates)
	})

	t.Run("git failure yields no candidates", func(t *testing.T) {
		runner := stubRunner{output: git.Output{ExitCode: 128, Stderr: "fatal: not a git repository\n"}}

		candidates := completeSourceBranch(runner, dir, "")
		assert.Empty(t, candidates)
	})
}
