package batchlayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/xcopr/pkg/batch"
)

func TestConfigFromSettings(t *testing.T) {
	s := BatchSettings{
		Command:   "cat {}",
		BatchSize: 4,
		Replace:   "{}",
		Shell:     "sh",
		TempDir:   "/var/tmp",
		JobFile:   "ignored.yaml",
		Input:     "-",
	}
	assert.Equal(t, &batch.Config{Command: "cat {}", BatchSize: 4, Replace: "{}", Shell: "sh", TempDir: "/var/tmp"}, s.Config())
}

func TestNewBatchLayer(t *testing.T) {
	l, err := NewBatchLayer()
	require.NoError(t, err)
	assert.Equal(t, BatchLayerSlug, l.GetSlug())
	for _, name := range []string{"command", "batch-size", "replace", "shell", "temp-dir", "job-file", "input"} {
		_, ok := l.GetParameterDefinitions().Get(name)
		assert.True(t, ok, name)
	}
}
