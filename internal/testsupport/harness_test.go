package testsupport

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	killed  bool
	killErr error
}

func (p *fakeProcess) Kill() error {
	p.killed = true
	return p.killErr
}

func TestNewSwitchesIntoTempDir(t *testing.T) {
	h := New(t)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	// Resolve symlinks so the comparison holds on platforms where the temp
	// root is itself a symlink.
	wantDir, err := filepath.EvalSymlinks(h.Dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
	assert.True(t, strings.HasPrefix(h.Dir, os.TempDir()), "harness dir should live under the temp root")
}

func TestTeardownRestoresStateAndReapsProcesses(t *testing.T) {
	prev, err := os.Getwd()
	require.NoError(t, err)

	h := New(t)
	proc := &fakeProcess{}
	h.Track(proc)
	require.Equal(t, 1, h.Tracked())

	require.NoError(t, h.Teardown())

	assert.Zero(t, h.Tracked(), "teardown must empty the process list")
	assert.True(t, proc.killed, "teardown must signal tracked processes")
	assert.NoDirExists(t, h.Dir)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, prev, cwd)
}

func TestTeardownToleratesFinishedProcesses(t *testing.T) {
	h := New(t)
	h.Track(&fakeProcess{killErr: os.ErrProcessDone})

	assert.NoError(t, h.Teardown())
}

func TestTeardownPropagatesKillFailures(t *testing.T) {
	h := New(t)
	h.Track(&fakeProcess{killErr: errors.New("operation not permitted")})

	err := h.Teardown()
	assert.ErrorContains(t, err, "reap test process")
}

func TestTeardownIsIdempotent(t *testing.T) {
	h := New(t)
	proc := &fakeProcess{killErr: errors.New("operation not permitted")}
	h.Track(proc)

	require.Error(t, h.Teardown())
	assert.NoError(t, h.Teardown(), "second teardown is a no-op")
}

func TestRunCapturesBothStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	h := New(t)

	stdout, stderr, err := h.Run("sh", "-c", "echo to-out; echo to-err 1>&2")
	require.NoError(t, err)

	assert.Equal(t, "to-out\n", stdout)
	assert.Equal(t, "to-err\n", stderr)
}

func TestRunUsesPinnedEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	h := New(t)

	stdout, _, err := h.Run("sh", "-c", "echo $LANG")
	require.NoError(t, err)
	assert.Equal(t, "C\n", stdout)
}

func TestStartTracksProcessUntilTeardown(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the sleep utility")
	}
	h := New(t)

	cmd, err := h.Start("sleep", "30")
	require.NoError(t, err)
	require.Equal(t, 1, h.Tracked())

	require.NoError(t, h.Teardown())
	assert.Zero(t, h.Tracked())

	assert.Error(t, cmd.Wait(), "the child should have been killed, not exited cleanly")
}
