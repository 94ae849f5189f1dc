package cmd

import (
	"fmt"
	"os"

	"github.com/keisukeshimizu/swap-worktree/internal/config"
	"github.com/keisukeshimizu/swap-worktree/internal/doctor"
	"github.com/keisukeshimizu/swap-worktree/internal/git"
	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the environment a swap would run in",
	Long: `Run read-only diagnostic checks over the git environment.

Checks the git installation ('git switch' needs git 2.23+), whether the
current directory is inside a worktree, the health of the repository's
worktrees, and whether interrupted swaps left stashes behind.

Examples:
  swap-worktree doctor                 # Run all diagnostic checks
  swap-worktree doctor --format json   # Output results in JSON format
  swap-worktree doctor --simple        # Use simple output format`,
	Aliases: []string{"check", "diagnose"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFormat, _ := cmd.Flags().GetString("format")
		useSimple, _ := cmd.Flags().GetBool("simple")

		cfg, err := config.NewManager().Load()
		if err != nil {
			return err
		}

		checker := doctor.NewChecker(git.NewRunner(), ".", cfg.StashPrefix)
		result := checker.CheckSystem()

		switch outputFormat {
		case "json":
			fmt.Print(result.FormatAsJSON())
		case "simple":
			fmt.Print(result.FormatAsSimple())
		default:
			if useSimple {
				fmt.Print(result.FormatAsSimple())
			} else {
				fmt.Print(result.FormatAsTable())
			}
		}

		switch result.GetOverallStatus() {
		case doctor.CheckStatusFail:
			os.Exit(1)
		case doctor.CheckStatusWarn:
			os.Exit(2)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringP("format", "f", "table", "Output format (table, json, simple)")
	doctorCmd.Flags().Bool("simple", false, "Use simple output format")
}
