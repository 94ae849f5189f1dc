package worktree

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/keisukeshimizu/swap-worktree/internal/git"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts git responses per (dir, argv) pair and records every
// call, so tests can assert both outcomes and ordering.
type fakeRunner struct {
	t         *testing.T
	responses map[string]git.Output
	calls     []string
}

func newFakeRunner(t *testing.T) *fakeRunner {
	return &fakeRunner{
		t:         t,
		responses: make(map[string]git.Output),
	}
}

func callKey(dir, args string) string {
	return dir + "|" + args
}

func (f *fakeRunner) stub(dir, args string, output git.Output) {
	f.responses[callKey(dir, args)] = output
}

func (f *fakeRunner) stubOK(dir, args, stdout string) {
	f.stub(dir, args, git.Output{Stdout: stdout})
}

func (f *fakeRunner) stubFail(dir, args, stderr string) {
	f.stub(dir, args, git.Output{Stderr: stderr, ExitCode: 1})
}

func (f *fakeRunner) Run(dir string, args ...string) (git.Output, error) {
	key := callKey(dir, strings.Join(args, " "))
	f.calls = append(f.calls, key)

	output, ok := f.responses[key]
	if !ok {
		f.t.Fatalf("unexpected git call: %s", key)
	}
	output.Command = strings.Join(args, " ")
	return output, nil
}

func (f *fakeRunner) called(dir, args string) bool {
	return f.callIndex(dir, args) >= 0
}

func (f *fakeRunner) callIndex(dir, args string) int {
	key := callKey(dir, args)
	for i, call := range f.calls {
		if call == key {
			return i
		}
	}
	return -1
}

func (f *fakeRunner) calledMatching(substr string) bool {
	for _, call := range f.calls {
		if strings.Contains(call, substr) {
			return true
		}
	}
	return false
}

// canonTempDir returns a temp dir in canonical form, matching what the
// resolver hands to the runner.
func canonTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// nopLogger discards all protocol logging in tests.
type nopLogger struct{}

func (nopLogger) Step(step, total int, format string, args ...interface{}) {}
func (nopLogger) Debug(format string, args ...interface{})                 {}
func (nopLogger) Warning(format string, args ...interface{})               {}
