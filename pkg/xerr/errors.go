// Package xerr defines the error kinds shared by the batch engine.
//
// Callers match kinds with errors.Is. Subprocess exit failures carry their
// exit code and captured stderr in an *ExitError, reachable with errors.As.
package xerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidEncoding      = errors.New("invalid UTF-8 encoding")
	ErrInvalidBatchSize     = errors.New("invalid batch size")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrTempFile             = errors.New("temp file failure")
	ErrSubprocess           = errors.New("subprocess failed")
	ErrSpawn                = fmt.Errorf("%w: spawn", ErrSubprocess)
	ErrOutputMismatch       = errors.New("output line count mismatch")
)

// ExitError reports a command that ran but exited with a nonzero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command exited with status %d: %s", e.Code, e.Command)
	if s := strings.TrimSpace(string(e.Stderr)); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExitError) Is(target error) bool {
	return target == ErrSubprocess
}

// IsConfiguration reports whether err was raised while validating options,
// before any input was read.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) || errors.Is(err, ErrInvalidBatchSize)
}
