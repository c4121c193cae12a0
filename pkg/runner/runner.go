// Package runner executes one rendered command line through a POSIX shell
// and captures what it printed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/xcopr/pkg/lines"
	"github.com/go-go-golems/xcopr/pkg/xerr"
)

const DefaultShell = "sh"

// strictPrelude makes the shell fail on unset variables and failing commands.
// pipefail is only enabled when the shell knows it.
const strictPrelude = "set -eu\n(set -o pipefail) 2>/dev/null && set -o pipefail\n"

// Result is the outcome of one command invocation.
type Result struct {
	Command  string
	ExitCode int
	Lines    []string
	Stderr   []byte
	Duration time.Duration
}

// Runner spawns shells. The zero value runs sh in the current directory with
// the parent's environment. Stdin of the child is always the null device.
type Runner struct {
	Shell string
	Dir   string
	Env   []string
}

// Script returns the text handed to "sh -c" for command.
func Script(command string) string {
	return strictPrelude + command
}

// Run executes command and blocks until the shell exits and every process
// holding its stdout or stderr has closed them. There is no timeout. The child
// and everything it started are killed when ctx is cancelled. On a nonzero exit the returned error is an
// *xerr.ExitError and the Result still carries the captured stderr.
func (r *Runner) Run(ctx context.Context, command string) (*Result, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", Script(command))
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	setProcessGroup(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", xerr.ErrSpawn, shell, err)
	}
	log.Debug().Int("pid", cmd.Process.Pid).Str("shell", shell).Str("command", command).Msg("subprocess started")

	waitErr := cmd.Wait()
	data := stdout.Bytes()

	res := &Result{
		Command:  command,
		ExitCode: cmd.ProcessState.ExitCode(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	log.Debug().
		Int("exit_code", res.ExitCode).
		Int("stdout_bytes", len(data)).
		Int("stderr_bytes", len(res.Stderr)).
		Dur("duration", res.Duration).
		Msg("subprocess finished")

	if ctx.Err() != nil {
		return res, fmt.Errorf("%w: interrupted: %w", xerr.ErrSubprocess, ctx.Err())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, &xerr.ExitError{Command: command, Code: exitErr.ExitCode(), Stderr: res.Stderr}
		}
		return res, fmt.Errorf("%w: wait: %w", xerr.ErrSubprocess, waitErr)
	}
	var err error
	res.Lines, err = lines.Decode(data)
	if err != nil {
		return res, fmt.Errorf("command output: %w", err)
	}
	return res, nil
}
