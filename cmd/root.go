package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command; the swap itself is the default
// action, so the two positional arguments live on the root.
var rootCmd = &cobra.Command{
	Use:   "swap-worktree [flags] <destination_worktree_dir> <source_branch_name>",
	Short: "Swap branches (and state) between two git worktrees",
	Long: `swap-worktree atomically swaps the checked-out branch between two
worktrees of the same repository, carrying each worktree's uncommitted and
untracked changes along.

Given a destination worktree directory and a source branch name, the tool
finds the worktree currently holding the source branch, stashes both
worktrees, detaches both heads, switches each worktree onto the other's
branch, and reapplies each stash in its new home.

Examples:
  swap-worktree ../myapp-main feature/login   # put feature/login here, main there
  swap-worktree -d ~/src/api hotfix/crash     # same, with per-step progress`,
	Version:           "1.0.0",
	Args:              cobra.ExactArgs(2),
	SilenceUsage:      true,
	RunE:              runSwap,
	ValidArgsFunction: completeRootArgs,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/swap-worktree/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable verbose per-step logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and environment variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home + "/.config/swap-worktree")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SWAP_WORKTREE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && debug {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
