package lines

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-go-golems/xcopr/pkg/xerr"
)

// Read consumes r to EOF and returns its lines. The whole stream must be
// valid UTF-8; no line is returned otherwise.
func Read(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return Decode(data)
}

// ReadContext is Read that gives up when ctx is done. A reader blocked in Read
// (a terminal, a producer that never closes) is abandoned; its goroutine
// finishes once the reader returns.
func ReadContext(ctx context.Context, r io.Reader) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("interrupted before reading input: %w", err)
	}
	type result struct {
		lines []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		l, err := Read(r)
		done <- result{lines: l, err: err}
	}()
	select {
	case res := <-done:
		return res.lines, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("interrupted while reading input: %w", ctx.Err())
	}
}

// Decode validates data as UTF-8 and splits it with Split.
func Decode(data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w at byte %d", xerr.ErrInvalidEncoding, firstInvalid(data))
	}
	return Split(string(data)), nil
}

// Split breaks s on '\n'. A '\r' right before the '\n' belongs to the
// terminator; a lone '\r' does not. A trailing terminator does not start a
// new empty line.
func Split(s string) []string {
	if s == "" {
		return nil
	}
	terminated := strings.HasSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		if i < len(parts)-1 || terminated {
			parts[i] = strings.TrimSuffix(p, "\r")
		}
	}
	return parts
}

func firstInvalid(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
