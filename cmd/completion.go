package cmd

import (
	"strings"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
	"github.com/keisukeshimizu/swap-worktree/internal/worktree"
	"github.com/spf13/cobra"
)

// completeRootArgs completes the positional arguments: directories for the
// destination, branch names for the source branch. Branch candidates come
// from the worktree listing of the repository the already-typed destination
// belongs to. Completion must never break the shell, so every failure path
// returns an empty candidate set.
func completeRootArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveFilterDirs
	case 1:
		return completeSourceBranch(git.NewRunner(), args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeSourceBranch lists the branches checked out across the
// repository's worktrees, filtered by the typed prefix.
func completeSourceBranch(runner git.Runner, destinationArg, prefix string) []string {
	dir, err := git.ResolveWorktreeDir(destinationArg)
	if err != nil {
		return nil
	}

	branches, err := worktree.NewLocator(runner).ListBranches(dir)
	if err != nil {
		return nil
	}

	var candidates []string
	for _, branch := range branches {
		if strings.HasPrefix(branch, prefix) {
			candidates = append(candidates, branch)
		}
	}
	return candidates
}
