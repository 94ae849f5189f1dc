package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Output captures everything a git invocation produced
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Command  string // rendered argument list, for diagnostics
}

// Combined returns stdout and stderr trimmed and joined, for error messages
// and for matching sentinel responses that git prints to either stream.
func (o Output) Combined() string {
	var parts []string
	if s := strings.TrimSpace(o.Stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(o.Stderr); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

// Success reports whether the invocation exited with status zero.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner executes git with a working directory and an argument list.
// It never interprets what the command means; callers own the semantics.
type Runner interface {
	Run(dir string, args ...string) (Output, error)
}

// CLIRunner runs the real git binary as a subprocess.
type CLIRunner struct{}

// NewRunner creates a Runner backed by the git binary on PATH.
func NewRunner() *CLIRunner {
	return &CLIRunner{}
}

// Run executes git in dir and captures stdout, stderr and the exit status.
// A non-zero exit is not an error at this layer; the returned error covers
// only failures to launch the process at all.
func (r *CLIRunner) Run(dir string, args ...string) (Output, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := Output{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Command: strings.Join(args, " "),
	}

	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return output, fmt.Errorf("failed to run git %s: %w", output.Command, err)
		}
		output.ExitCode = exitErr.ExitCode()
	}

	return output, nil
}

// RunChecked executes git and turns any non-zero exit into an error that
// carries the command line and both output streams.
func RunChecked(runner Runner, dir, context string, args ...string) (Output, error) {
	output, err := runner.Run(dir, args...)
	if err != nil {
		return output, fmt.Errorf("%s: %w", context, err)
	}
	if !output.Success() {
		return output, fmt.Errorf("%s\nCommand: git %s\nstdout: %s\nstderr: %s",
			context, output.Command, strings.TrimSpace(output.Stdout), strings.TrimSpace(output.Stderr))
	}
	return output, nil
}
