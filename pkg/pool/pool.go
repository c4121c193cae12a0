// Package pool keeps a fixed number of scratch files open for the lifetime of
// a run. Slot i is rewritten with line i of every batch, so the number of
// files on disk never depends on the amount of input.
package pool

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-go-golems/xcopr/pkg/xerr"
)

const DefaultPrefix = "xcopr-"

type slot struct {
	index int
	path  string
	file  afero.File
}

// Pool is not safe for concurrent use. It is owned by a single driver that
// populates one batch at a time.
type Pool struct {
	fs     afero.Fs
	slots  []slot
	closed bool
}

// New creates size empty files in dir (the system temp dir when empty).
// On failure every file created so far is removed again.
func New(fs afero.Fs, dir, prefix string, size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size %d: %w", size, xerr.ErrInvalidBatchSize)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	p := &Pool{fs: fs, slots: make([]slot, 0, size)}
	for i := 0; i < size; i++ {
		f, err := afero.TempFile(fs, dir, prefix)
		if err != nil {
			closeErr := p.Close()
			return nil, errors.Join(fmt.Errorf("failed to create temp file %d: %w: %w", i, xerr.ErrTempFile, err), closeErr)
		}
		p.slots = append(p.slots, slot{index: i, path: f.Name(), file: f})
	}
	log.Debug().Int("size", size).Str("dir", dir).Msg("temp file pool created")
	return p, nil
}

func (p *Pool) Size() int {
	return len(p.slots)
}

// Paths returns the backing file path of every slot, populated or not.
func (p *Pool) Paths() []string {
	paths := make([]string, len(p.slots))
	for i, s := range p.slots {
		paths[i] = s.path
	}
	return paths
}

// Populate writes batch[i] plus a newline into slot i and returns the paths
// of the populated slots in order. Slots past len(batch) are left untouched.
func (p *Pool) Populate(batch []string) ([]string, error) {
	if p.closed {
		return nil, fmt.Errorf("pool is closed: %w", xerr.ErrTempFile)
	}
	if len(batch) > len(p.slots) {
		return nil, fmt.Errorf("batch of %d lines exceeds pool size %d: %w", len(batch), len(p.slots), xerr.ErrTempFile)
	}
	paths := make([]string, 0, len(batch))
	for i, line := range batch {
		s := p.slots[i]
		if err := s.rewrite(line); err != nil {
			return nil, fmt.Errorf("slot %d (%s): %w: %w", s.index, s.path, xerr.ErrTempFile, err)
		}
		paths = append(paths, s.path)
	}
	return paths, nil
}

func (s slot) rewrite(line string) error {
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// Close closes and removes every backing file. It is safe to call more than
// once; only the first call does any work.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	for _, s := range p.slots {
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.path, err))
		}
		if err := p.fs.Remove(s.path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", s.path, err))
		}
	}
	log.Debug().Int("size", len(p.slots)).Msg("temp file pool removed")
	return errors.Join(errs...)
}
