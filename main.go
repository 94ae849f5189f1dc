package main

import (
	"os"

	"github.com/keisukeshimizu/swap-worktree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
