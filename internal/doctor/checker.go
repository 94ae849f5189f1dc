package doctor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
	"github.com/keisukeshimizu/swap-worktree/internal/worktree"
)

// CheckStatus represents the status of a diagnostic check
type CheckStatus string

const (
	CheckStatusPass CheckStatus = "pass"
	CheckStatusWarn CheckStatus = "warn"
	CheckStatusFail CheckStatus = "fail"
)

// CheckResult represents the result of a single diagnostic check
type CheckResult struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      CheckStatus `json:"status"`
	Details     string      `json:"details"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// DiagnosticSummary provides an overview of all checks
type DiagnosticSummary struct {
	Total   int  `json:"total"`
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// DiagnosticResult contains the results of all diagnostic checks
type DiagnosticResult struct {
	Checks  []CheckResult     `json:"checks"`
	Summary DiagnosticSummary `json:"summary"`
}

// Checker performs read-only diagnostic checks over the git environment a
// swap would run in. It never mutates anything.
type Checker struct {
	runner      git.Runner
	dir         string
	stashPrefix string
}

// NewChecker creates a Checker rooted at dir.
func NewChecker(runner git.Runner, dir, stashPrefix string) *Checker {
	return &Checker{runner: runner, dir: dir, stashPrefix: stashPrefix}
}

// CheckSystem runs all diagnostic checks
func (c *Checker) CheckSystem() *DiagnosticResult {
	checks := []CheckResult{c.CheckGitInstallation()}

	repoCheck := c.CheckRepository()
	checks = append(checks, repoCheck)

	if repoCheck.Status != CheckStatusFail {
		checks = append(checks, c.CheckWorktrees())
		checks = append(checks, c.CheckLeftoverStashes())
	}

	return &DiagnosticResult{
		Checks:  checks,
		Summary: calculateSummary(checks),
	}
}

// minSwitchMajor/minSwitchMinor is the first git release shipping
// 'git switch', which the swap protocol depends on.
const (
	minSwitchMajor = 2
	minSwitchMinor = 23
)

// CheckGitInstallation verifies git is installed and new enough
func (c *Checker) CheckGitInstallation() CheckResult {
	result := CheckResult{
		Name:        "Git Installation",
		Description: "Verify git is installed and supports 'git switch'",
	}

	output, err := c.runner.Run("", "--version")
	if err != nil || !output.Success() {
		result.Status = CheckStatusFail
		result.Details = "git is not installed or not in PATH"
		result.Suggestions = []string{
			"Install git from https://git-scm.com/",
			"Ensure git is in your system PATH",
		}
		return result
	}

	version := strings.TrimSpace(output.Stdout)
	major, minor, ok := parseGitVersion(version)
	if !ok {
		result.Status = CheckStatusWarn
		result.Details = fmt.Sprintf("could not parse git version from %q", version)
		return result
	}

	if major < minSwitchMajor || (major == minSwitchMajor && minor < minSwitchMinor) {
		result.Status = CheckStatusFail
		result.Details = fmt.Sprintf("%s is too old; 'git switch' needs %d.%d or newer", version, minSwitchMajor, minSwitchMinor)
		result.Suggestions = []string{"Upgrade git to 2.23 or newer"}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = version
	return result
}

// CheckRepository verifies the current directory is inside a git worktree
func (c *Checker) CheckRepository() CheckResult {
	result := CheckResult{
		Name:        "Repository",
		Description: "Verify the current directory is inside a git worktree",
	}

	if err := git.EnsureWorktree(c.runner, c.dir); err != nil {
		result.Status = CheckStatusFail
		result.Details = "current directory is not inside a git worktree"
		result.Suggestions = []string{"Run swap-worktree from inside a repository worktree"}
		return result
	}

	root, err := git.RepoRoot(c.runner, c.dir)
	if err != nil {
		result.Status = CheckStatusWarn
		result.Details = "could not determine repository root"
		return result
	}

	result.Status = CheckStatusPass
	result.Details = fmt.Sprintf("repository at %s", root)
	return result
}

// CheckWorktrees inspects the repository's worktrees for swap blockers:
// stale directories, detached heads, or too few worktrees to swap between.
func (c *Checker) CheckWorktrees() CheckResult {
	result := CheckResult{
		Name:        "Worktrees",
		Description: "Check worktrees for stale paths and detached heads",
	}

	output, err := git.RunChecked(c.runner, c.dir, "failed to list worktrees",
		"worktree", "list", "--porcelain")
	if err != nil {
		result.Status = CheckStatusFail
		result.Details = "failed to list worktrees"
		result.Suggestions = []string{"Check repository integrity"}
		return result
	}

	records := worktree.ParseRecords(output.Stdout)

	var stale, detached int
	for _, record := range records {
		if _, err := os.Stat(record.Path); err != nil {
			stale++
		}
		if record.Branch == "" {
			detached++
		}
	}

	var notes []string
	if len(records) < 2 {
		notes = append(notes, "only one worktree exists; nothing to swap with")
		result.Suggestions = append(result.Suggestions, "Create a second worktree with 'git worktree add'")
	}
	if stale > 0 {
		notes = append(notes, fmt.Sprintf("%d worktree(s) point at missing directories", stale))
		result.Suggestions = append(result.Suggestions, "Run 'git worktree prune' to clean up stale entries")
	}
	if detached > 0 {
		notes = append(notes, fmt.Sprintf("%d worktree(s) have a detached HEAD and cannot take part in a swap", detached))
	}

	if len(notes) > 0 {
		result.Status = CheckStatusWarn
		result.Details = strings.Join(notes, "; ")
	} else {
		result.Status = CheckStatusPass
		result.Details = fmt.Sprintf("all %d worktrees are healthy", len(records))
	}
	return result
}

// CheckLeftoverStashes looks for stashes created by interrupted swaps.
func (c *Checker) CheckLeftoverStashes() CheckResult {
	result := CheckResult{
		Name:        "Swap Stashes",
		Description: "Look for stashes left behind by interrupted swaps",
	}

	output, err := git.RunChecked(c.runner, c.dir, "failed to list stashes",
		"stash", "list", "--format=%gd:%gs")
	if err != nil {
		result.Status = CheckStatusWarn
		result.Details = "could not list stashes"
		return result
	}

	var leftovers []string
	for _, line := range strings.Split(output.Stdout, "\n") {
		ref, subject, found := strings.Cut(line, ":")
		if found && strings.Contains(subject, c.stashPrefix+"-") {
			leftovers = append(leftovers, strings.TrimSpace(ref))
		}
	}

	if len(leftovers) > 0 {
		result.Status = CheckStatusWarn
		result.Details = fmt.Sprintf("%d leftover swap stash(es): %s", len(leftovers), strings.Join(leftovers, ", "))
		result.Suggestions = []string{
			"Inspect them with 'git stash show'",
			"Apply or drop them once their contents are accounted for",
		}
	} else {
		result.Status = CheckStatusPass
		result.Details = "no leftover swap stashes"
	}
	return result
}

// parseGitVersion extracts major.minor from 'git version X.Y.Z' output.
func parseGitVersion(version string) (major, minor int, ok bool) {
	fields := strings.Fields(version)
	if len(fields) < 3 {
		return 0, 0, false
	}

	parts := strings.Split(fields[2], ".")
	if len(parts) < 2 {
		return 0, 0, false
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// calculateSummary calculates the diagnostic summary
func calculateSummary(checks []CheckResult) DiagnosticSummary {
	summary := DiagnosticSummary{Total: len(checks)}

	for _, check := range checks {
		switch check.Status {
		case CheckStatusPass:
			summary.Passed++
		case CheckStatusWarn:
			summary.Warned++
		case CheckStatusFail:
			summary.Failed++
		}
	}

	summary.Healthy = summary.Failed == 0
	return summary
}

// GetOverallStatus returns the worst status across all checks
func (r *DiagnosticResult) GetOverallStatus() CheckStatus {
	if r.Summary.Failed > 0 {
		return CheckStatusFail
	}
	if r.Summary.Warned > 0 {
		return CheckStatusWarn
	}
	return CheckStatusPass
}

// FormatAsTable formats the diagnostic result as a table
func (r *DiagnosticResult) FormatAsTable() string {
	var output bytes.Buffer
	w := tabwriter.NewWriter(&output, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAILS")
	fmt.Fprintln(w, "-----\t------\t-------")

	for _, check := range r.Checks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, strings.ToUpper(string(check.Status)), check.Details)
	}

	w.Flush()

	fmt.Fprintf(&output, "\nSummary: %d total, %d passed, %d warned, %d failed\n",
		r.Summary.Total, r.Summary.Passed, r.Summary.Warned, r.Summary.Failed)

	return output.String()
}

// FormatAsJSON formats the diagnostic result as JSON
func (r *DiagnosticResult) FormatAsJSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err.Error())
	}
	return string(data)
}

// FormatAsSimple formats the diagnostic result as a simple list
func (r *DiagnosticResult) FormatAsSimple() string {
	var output strings.Builder

	for _, check := range r.Checks {
		var icon string
		switch check.Status {
		case CheckStatusPass:
			icon = "✅"
		case CheckStatusWarn:
			icon = "⚠️"
		case CheckStatusFail:
			icon = "❌"
		}

		fmt.Fprintf(&output, "%s %s: %s\n", icon, check.Name, check.Details)
		for _, suggestion := range check.Suggestions {
			fmt.Fprintf(&output, "   💡 %s\n", suggestion)
		}
	}

	fmt.Fprintf(&output, "\nSummary: %d total, %d passed, %d warned, %d failed\n",
		r.Summary.Total, r.Summary.Passed, r.Summary.Warned, r.Summary.Failed)

	return output.String()
}
