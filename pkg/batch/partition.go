package batch

import (
	"fmt"

	"github.com/go-go-golems/xcopr/pkg/xerr"
)

// Partitioner hands out contiguous, non-overlapping chunks of lines. Every
// chunk has size lines except possibly the last one.
type Partitioner struct {
	lines []string
	size  int
	pos   int
}

func Partition(lines []string, size int) (*Partitioner, error) {
	if size < 1 {
		return nil, fmt.Errorf("batch size %d: %w", size, xerr.ErrInvalidBatchSize)
	}
	return &Partitioner{lines: lines, size: size}, nil
}

// Next returns the next chunk, or false once all lines were handed out.
// Chunks are capped so appending to one cannot clobber the next.
func (p *Partitioner) Next() ([]string, bool) {
	if p.pos >= len(p.lines) {
		return nil, false
	}
	end := min(p.pos+p.size, len(p.lines))
	chunk := p.lines[p.pos:end:end]
	p.pos = end
	return chunk, true
}

// Count is the total number of chunks, independent of iteration state.
func (p *Partitioner) Count() int {
	return (len(p.lines) + p.size - 1) / p.size
}

// Offset is the index of the first line of the chunk Next will return.
func (p *Partitioner) Offset() int {
	return p.pos
}

func (p *Partitioner) Reset() {
	p.pos = 0
}
