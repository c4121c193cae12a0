package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-go-golems/xcopr/pkg/render"
)

// PlannedBatch is a batch as it would be executed, without running anything.
type PlannedBatch struct {
	Number  int
	Offset  int
	Lines   []string
	Command string
}

// SlotPlaceholders returns stand-in slot paths for previews.
func SlotPlaceholders(dir string, n int) []string {
	if dir == "" {
		dir = os.TempDir()
	}
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("xcopr-slot-%d", i))
	}
	return paths
}

// Plan renders the command of every batch using slotPaths as the pool.
func Plan(cfg *Config, input []string, slotPaths []string) ([]PlannedBatch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(slotPaths) < cfg.BatchSize {
		return nil, fmt.Errorf("need %d slot paths, got %d", cfg.BatchSize, len(slotPaths))
	}
	parts, err := Partition(input, cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	planned := make([]PlannedBatch, 0, parts.Count())
	for number := 1; ; number++ {
		offset := parts.Offset()
		chunk, ok := parts.Next()
		if !ok {
			break
		}
		planned = append(planned, PlannedBatch{
			Number:  number,
			Offset:  offset,
			Lines:   chunk,
			Command: render.Command(cfg.Command, cfg.Replace, slotPaths[:len(chunk)]),
		})
	}
	return planned, nil
}
