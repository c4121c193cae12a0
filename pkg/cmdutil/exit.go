package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-go-golems/xcopr/pkg/xerr"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	// ExitInterrupted follows the shell convention of 128 + SIGINT.
	ExitInterrupted = 130
)

var osExit = os.Exit

// ExitCode maps a run error to a process exit code. A failing command's own
// status is propagated when it has one.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *xerr.ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	if xerr.IsConfiguration(err) {
		return ExitUsage
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitFailure
}

// ExitOnError prints err to w and terminates the process with ExitCode(err).
// It returns normally when err is nil.
func ExitOnError(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	osExit(ExitCode(err))
}
