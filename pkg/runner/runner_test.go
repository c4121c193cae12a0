package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-go-golems/xcopr/pkg/xerr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunCapturesStdoutLines(t *testing.T) {
	r := &Runner{}
	res, err := r.Run(context.Background(), `printf 'one\ntwo\n'; echo oops >&2`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, res.Lines)
	assert.Equal(t, "oops\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunReadsFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in file")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o600))

	r := &Runner{}
	res, err := r.Run(context.Background(), "cat '"+path+"'")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, res.Lines)
}

func TestRunDoesNotForwardStdin(t *testing.T) {
	r := &Runner{}
	res, err := r.Run(context.Background(), "cat; echo done")
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, res.Lines)
}

func TestRunNonzeroExit(t *testing.T) {
	r := &Runner{}
	res, err := r.Run(context.Background(), "echo partial; echo bad >&2; exit 7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerr.ErrSubprocess))

	var ee *xerr.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 7, ee.Code)
	assert.Equal(t, "bad\n", string(ee.Stderr))
	assert.Equal(t, 7, res.ExitCode)
	assert.Nil(t, res.Lines)
}

func TestRunStrictMode(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{name: "unset variable", command: `echo "$XCOPR_SURELY_UNSET_VARIABLE"`},
		{name: "failing command stops the script", command: "false\necho unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Runner{}
			res, err := r.Run(context.Background(), tt.command)
			var ee *xerr.ExitError
			require.True(t, errors.As(err, &ee), "expected exit error, got %v", err)
			assert.NotEqual(t, 0, ee.Code)
			assert.Nil(t, res.Lines)
		})
	}
}

func TestRunSpawnFailure(t *testing.T) {
	r := &Runner{Shell: "/nonexistent/xcopr-shell"}
	res, err := r.Run(context.Background(), "true")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, xerr.ErrSpawn))
	assert.True(t, errors.Is(err, xerr.ErrSubprocess))
}

func TestRunInvalidUTF8Output(t *testing.T) {
	r := &Runner{}
	_, err := r.Run(context.Background(), `printf 'ok\n\377\n'`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerr.ErrInvalidEncoding))
}

func TestRunCancelledContextKillsChild(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	r := &Runner{}
	start := time.Now()
	_, err := r.Run(ctx, "sleep 30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunWaitsForBackgroundOutput(t *testing.T) {
	r := &Runner{}
	res, err := r.Run(context.Background(), "(sleep 3; echo late) & echo early")
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, res.Lines)
	assert.Equal(t, 0, res.ExitCode)
	assert.GreaterOrEqual(t, res.Duration, 3*time.Second)
}

func TestRunCancelKillsBackgroundJobs(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	r := &Runner{}
	start := time.Now()
	_, err := r.Run(ctx, "(sleep 30; echo late) & sleep 30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestScript(t *testing.T) {
	s := Script("wc -l /tmp/a")
	assert.Contains(t, s, "set -eu\n")
	assert.Equal(t, "wc -l /tmp/a", s[len(s)-len("wc -l /tmp/a"):])
}
