package cmd

import (
	"github.com/keisukeshimizu/swap-worktree/internal/config"
	"github.com/keisukeshimizu/swap-worktree/internal/git"
	"github.com/keisukeshimizu/swap-worktree/internal/logger"
	"github.com/keisukeshimizu/swap-worktree/internal/worktree"
	"github.com/spf13/cobra"
)

// runSwap is the thin adapter between the CLI surface and the swap
// protocol: it assembles the runner, logger and config, runs the swap, and
// renders the outcome. A completed swap with warnings still exits 0.
func runSwap(cmd *cobra.Command, args []string) error {
	logger.UpdateDebug()
	log := logger.GetLogger()
	if debug {
		log.SetDebug(true)
	}

	cfg, err := config.NewManager().Load()
	if err != nil {
		return err
	}
	if cfg.Debug && !log.IsDebug() {
		log.SetDebug(true)
	}

	destinationDir := args[0]
	sourceBranch := args[1]

	swapper := worktree.NewSwapper(git.NewRunner(), cfg.StashPrefix, log)
	result, err := swapper.Swap(worktree.Options{
		DestinationDir: destinationDir,
		SourceBranch:   sourceBranch,
	})
	if err != nil {
		return err
	}

	if log.IsDebug() {
		log.Success("Worktree swap complete.")
	} else {
		log.Info("Swap complete: '%s' -> '%s', '%s' -> '%s'.",
			result.DestinationDir, result.SourceBranch,
			result.SourceDir, result.DestinationBranch)
	}

	return nil
}
