// Package testsupport provides the functional-test harness: an isolated
// working directory, a pinned subprocess environment, and guaranteed cleanup
// of anything a test leaves running.
package testsupport

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"testing"
)

// Process is the slice of a child process that teardown needs. *os.Process
// satisfies it directly; tests can substitute fakes.
type Process interface {
	Kill() error
}

// Harness owns one test's runtime environment: a temporary working
// directory, the environment passed to subprocesses, and the list of
// processes that still need reaping at teardown.
type Harness struct {
	tb      testing.TB
	Dir     string
	Env     []string
	prevDir string
	procs   []Process
	done    bool
}

// New builds a harness rooted in a fresh temporary directory and makes that
// directory the working directory. Teardown is registered via tb.Cleanup, so
// it runs even when the test body fails; it restores the previous working
// directory, deletes the temporary one, and kills any tracked processes.
func New(tb testing.TB) *Harness {
	tb.Helper()

	dir, err := os.MkdirTemp("", "goscript-test-")
	if err != nil {
		tb.Fatalf("create test directory: %v", err)
	}
	prev, err := os.Getwd()
	if err != nil {
		tb.Fatalf("read working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		tb.Fatalf("enter test directory %s: %v", dir, err)
	}

	h := &Harness{
		tb:      tb,
		Dir:     dir,
		prevDir: prev,
		// Subprocesses get a minimal, deterministic environment: the
		// inherited PATH so the binary's own dependencies resolve, and a
		// fixed locale so output is comparable.
		Env: []string{
			"PATH=" + os.Getenv("PATH"),
			"LANG=C",
		},
	}
	tb.Cleanup(func() {
		if err := h.Teardown(); err != nil {
			tb.Errorf("harness teardown: %v", err)
		}
	})
	return h
}

// Run executes binary synchronously inside the harness directory and returns
// the captured stdout and stderr along with the run error.
func (h *Harness) Run(binary string, args ...string) (string, string, error) {
	cmd := exec.Command(binary, args...)
	cmd.Dir = h.Dir
	cmd.Env = h.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Start launches binary without waiting for it. The process joins the
// tracked list and is killed at teardown if the test has not reaped it.
func (h *Harness) Start(binary string, args ...string) (*exec.Cmd, error) {
	cmd := exec.Command(binary, args...)
	cmd.Dir = h.Dir
	cmd.Env = h.Env
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	h.Track(cmd.Process)
	return cmd, nil
}

// Track adds a process handle to the reap list.
func (h *Harness) Track(p Process) {
	h.procs = append(h.procs, p)
}

// Tracked reports how many processes still await teardown.
func (h *Harness) Tracked() int {
	return len(h.procs)
}

// Teardown restores the working directory, removes the temporary directory
// and kills every tracked process. A process that already exited is fine;
// any other kill failure is returned. Teardown is idempotent.
func (h *Harness) Teardown() error {
	if h.done {
		return nil
	}
	h.done = true

	var errs []error
	if err := os.Chdir(h.prevDir); err != nil {
		errs = append(errs, fmt.Errorf("restore working directory: %w", err))
	}
	if err := os.RemoveAll(h.Dir); err != nil {
		errs = append(errs, fmt.Errorf("remove test directory: %w", err))
	}
	for _, p := range h.procs {
		if err := p.Kill(); err != nil && !processGone(err) {
			errs = append(errs, fmt.Errorf("reap test process: %w", err))
		}
	}
	h.procs = nil
	return errors.Join(errs...)
}

func processGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}
