package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/xcopr/pkg/xerr"
)

func TestPlan(t *testing.T) {
	cfg := &Config{Command: "wc -l {}", BatchSize: 2, Replace: "{}"}
	slots := SlotPlaceholders("/tmp", 2)
	assert.Equal(t, []string{"/tmp/xcopr-slot-0", "/tmp/xcopr-slot-1"}, slots)

	planned, err := Plan(cfg, []string{"foo", "bar", "baz"}, slots)
	require.NoError(t, err)
	require.Len(t, planned, 2)

	assert.Equal(t, PlannedBatch{Number: 1, Offset: 0, Lines: []string{"foo", "bar"}, Command: "wc -l /tmp/xcopr-slot-0 /tmp/xcopr-slot-1"}, planned[0])
	assert.Equal(t, PlannedBatch{Number: 2, Offset: 2, Lines: []string{"baz"}, Command: "wc -l /tmp/xcopr-slot-0"}, planned[1])
}

func TestPlanErrors(t *testing.T) {
	_, err := Plan(&Config{Command: "cat {}", BatchSize: 0, Replace: "{}"}, []string{"a"}, nil)
	assert.True(t, errors.Is(err, xerr.ErrInvalidBatchSize))

	_, err = Plan(&Config{Command: "cat {}", BatchSize: 3, Replace: "{}"}, []string{"a"}, []string{"/tmp/x"})
	assert.Error(t, err)
}
