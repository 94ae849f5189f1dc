package worktree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoWorktrees wires the discovery phase for a destination on "main" and a
// source worktree on "feature". Mutating steps are stubbed per test.
func twoWorktrees(t *testing.T) (runner *fakeRunner, destDir, srcDir string) {
	t.Helper()

	base := canonTempDir(t)
	destDir = filepath.Join(base, "app")
	srcDir = filepath.Join(base, "app-feature")
	require.NoError(t, os.MkdirAll(destDir, 0755))
	require.NoError(t, os.MkdirAll(srcDir, 0755))

	runner = newFakeRunner(t)
	runner.stubOK(destDir, "rev-parse --is-inside-work-tree", "true\n")
	runner.stubOK(destDir, "rev-parse --git-common-dir", filepath.Join(destDir, ".git")+"\n")
	runner.stubOK(destDir, "symbolic-ref --short HEAD", "main\n")
	runner.stubOK(destDir, "worktree list --porcelain",
		"worktree "+destDir+"\nbranch refs/heads/main\n\n"+
			"worktree "+srcDir+"\nbranch refs/heads/feature\n")
	return runner, destDir, srcDir
}

func newTestSwapper(runner *fakeRunner) *Swapper {
	return NewSwapper(runner, "swap-stash", nopLogger{})
}

func TestSwapper_Swap(t *testing.T) {
	t.Run("swaps branches and carries the source worktree's changes", func(t *testing.T) {
		runner, destDir, srcDir := twoWorktrees(t)

		// Destination is clean, source has local changes.
		runner.stubOK(destDir, "stash push -u -m swap-stash-main", "No local changes to save\n")
		runner.stubOK(srcDir, "stash push -u -m swap-stash-feature", "Saved working directory\n")
		runner.stubOK(srcDir, "rev-parse stash@{0}", "abc123\n")
		runner.stubOK(srcDir, "stash list --format=%H:%gd", "abc123:stash@{0}\n")
		runner.stubOK(destDir, "switch --detach", "")
		runner.stubOK(srcDir, "switch --detach", "")
		runner.stubOK(destDir, "switch feature", "")
		runner.stubOK(srcDir, "switch main", "")
		runner.stubOK(destDir, "stash apply abc123", "")
		runner.stubOK(destDir, "stash drop stash@{0}", "")

		result, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.NoError(t, err)

		assert.Equal(t, destDir, result.DestinationDir)
		assert.Equal(t, srcDir, result.SourceDir)
		assert.Equal(t, "main", result.DestinationBranch)
		assert.Equal(t, "feature", result.SourceBranch)
		assert.Equal(t, destDir, result.RepoRoot)
		assert.Empty(t, result.Warnings)

		// The source's old changes land in the destination, and nowhere else.
		assert.True(t, runner.called(destDir, "stash apply abc123"))
		assert.False(t, runner.calledMatching(srcDir+"|stash apply"))

		// Detach both, then switch both, destination first each time.
		detachDest := runner.callIndex(destDir, "switch --detach")
		detachSrc := runner.callIndex(srcDir, "switch --detach")
		switchDest := runner.callIndex(destDir, "switch feature")
		switchSrc := runner.callIndex(srcDir, "switch main")
		require.True(t, detachDest >= 0 && detachSrc >= 0 && switchDest >= 0 && switchSrc >= 0)
		assert.Less(t, detachDest, detachSrc)
		assert.Less(t, detachSrc, switchDest)
		assert.Less(t, switchDest, switchSrc)
	})

	t.Run("identical directories abort before any mutating call", func(t *testing.T) {
		base := canonTempDir(t)
		destDir := filepath.Join(base, "app")
		require.NoError(t, os.MkdirAll(destDir, 0755))

		runner := newFakeRunner(t)
		runner.stubOK(destDir, "rev-parse --is-inside-work-tree", "true\n")
		runner.stubOK(destDir, "rev-parse --git-common-dir", filepath.Join(destDir, ".git")+"\n")
		runner.stubOK(destDir, "symbolic-ref --short HEAD", "main\n")
		runner.stubOK(destDir, "worktree list --porcelain",
			"worktree "+destDir+"\nbranch refs/heads/main\n")

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "main",
		})
		require.ErrorIs(t, err, ErrSameWorktree)

		assert.False(t, runner.calledMatching("stash"))
		assert.False(t, runner.calledMatching("switch"))
	})

	t.Run("capture failure aborts before any detach", func(t *testing.T) {
		runner, destDir, srcDir := twoWorktrees(t)
		runner.stubOK(destDir, "stash push -u -m swap-stash-main", "No local changes to save\n")
		runner.stubFail(srcDir, "stash push -u -m swap-stash-feature", "fatal: unable to write new index file")

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.Error(t, err)
		var stashErr *StashError
		assert.ErrorAs(t, err, &stashErr)
		assert.False(t, runner.calledMatching("switch"))
	})

	t.Run("source detach failure restores the destination and aborts", func(t *testing.T) {
		runner, destDir, srcDir := twoWorktrees(t)
		runner.stubOK(destDir, "stash push -u -m swap-stash-main", "No local changes to save\n")
		runner.stubOK(srcDir, "stash push -u -m swap-stash-feature", "No local changes to save\n")
		runner.stubOK(destDir, "switch --detach", "")
		runner.stubFail(srcDir, "switch --detach", "fatal: index lock held")
		runner.stubOK(destDir, "switch main", "")

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to detach source worktree")

		// Best-effort restore of the destination's original branch.
		assert.True(t, runner.called(destDir, "switch main"))
		// The source was never moved off its branch, and no stash was touched.
		assert.False(t, runner.called(destDir, "switch feature"))
		assert.False(t, runner.calledMatching("stash apply"))
	})

	t.Run("restore failure does not mask the detach error", func(t *testing.T) {
		runner, destDir, srcDir := twoWorktrees(t)
		runner.stubOK(destDir, "stash push -u -m swap-stash-main", "No local changes to save\n")
		runner.stubOK(srcDir, "stash push -u -m swap-stash-feature", "No local changes to save\n")
		runner.stubOK(destDir, "switch --detach", "")
		runner.stubFail(srcDir, "switch --detach", "fatal: index lock held")
		runner.stubFail(destDir, "switch main", "fatal: still locked")

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to detach source worktree")
	})

	t.Run("second switch failure is critical and names both recovery commands", func(t *testing.T) {
		runner, destDir, srcDir := twoWorktrees(t)
		runner.stubOK(destDir, "stash push -u -m swap-stash-main", "Saved working directory\n")
		runner.stubOK(destDir, "rev-parse stash@{0}", "dest111\n")
		runner.stubOK(destDir, "stash list --format=%H:%gd", "dest111:stash@{0}\n")
		runner.stubOK(srcDir, "stash push -u -m swap-stash-feature", "Saved working directory\n")
		runner.stubOK(srcDir, "rev-parse stash@{0}", "src222\n")
		runner.stubOK(srcDir, "stash list --format=%H:%gd", "src222:stash@{0}\ndest111:stash@{1}\n")
		runner.stubOK(destDir, "switch --detach", "")
		runner.stubOK(srcDir, "switch --detach", "")
		runner.stubOK(destDir, "switch feature", "")
		runner.stubFail(srcDir, "switch main", "fatal: invalid reference: main")

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.Error(t, err)

		var critical *CriticalStateError
		require.ErrorAs(t, err, &critical)
		assert.Equal(t, destDir, critical.DestinationDir)
		assert.Equal(t, srcDir, critical.SourceDir)

		message := err.Error()
		assert.Contains(t, message, "CRITICAL STATE")
		assert.Contains(t, message, "git -C '"+destDir+"' switch 'feature'")
		assert.Contains(t, message, "git -C '"+srcDir+"' switch 'main'")

		// Both snapshots stay untouched as recovery material.
		assert.False(t, runner.calledMatching("stash apply"))
		assert.False(t, runner.calledMatching("stash drop"))
	})

	t.Run("reapply failure completes the swap with warnings", func(t *testing.T) {
		runner, destDir, srcDir := twoWorktrees(t)
		runner.stubOK(destDir, "stash push -u -m swap-stash-main", "No local changes to save\n")
		runner.stubOK(srcDir, "stash push -u -m swap-stash-feature", "Saved working directory\n")
		runner.stubOK(srcDir, "rev-parse stash@{0}", "abc123\n")
		runner.stubOK(srcDir, "stash list --format=%H:%gd", "abc123:stash@{0}\n")
		runner.stubOK(destDir, "switch --detach", "")
		runner.stubOK(srcDir, "switch --detach", "")
		runner.stubOK(destDir, "switch feature", "")
		runner.stubOK(srcDir, "switch main", "")
		runner.stubFail(destDir, "stash apply abc123", "CONFLICT (content): Merge conflict")

		result, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "failed to apply stash abc123")
		assert.False(t, runner.calledMatching("stash drop"))
	})

	t.Run("nonexistent destination", func(t *testing.T) {
		runner := newFakeRunner(t)

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: filepath.Join(t.TempDir(), "missing"),
			SourceBranch:   "feature",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
		assert.Empty(t, runner.calls)
	})

	t.Run("detached destination is rejected", func(t *testing.T) {
		base := canonTempDir(t)
		destDir := filepath.Join(base, "app")
		require.NoError(t, os.MkdirAll(destDir, 0755))

		runner := newFakeRunner(t)
		runner.stubOK(destDir, "rev-parse --is-inside-work-tree", "true\n")
		runner.stubOK(destDir, "rev-parse --git-common-dir", filepath.Join(destDir, ".git")+"\n")
		runner.stubOK(destDir, "symbolic-ref --short HEAD", "\n")

		_, err := newTestSwapper(runner).Swap(Options{
			DestinationDir: destDir,
			SourceBranch:   "feature",
		})
		require.Error(t, err)
		var detached *DetachedHeadError
		assert.True(t, errors.As(err, &detached))
	})
}
