package batchlayer

import (
	"fmt"

	glzcms "github.com/go-go-golems/glazed/pkg/cmds"
	glzlayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"

	"github.com/go-go-golems/xcopr/pkg/batch"
	"github.com/go-go-golems/xcopr/pkg/runner"
)

const BatchLayerSlug = "batching"

type BatchSettings struct {
	Command   string `glazed.parameter:"command"`
	BatchSize int    `glazed.parameter:"batch-size"`
	Replace   string `glazed.parameter:"replace"`
	Shell     string `glazed.parameter:"shell"`
	TempDir   string `glazed.parameter:"temp-dir"`
	JobFile   string `glazed.parameter:"job-file"`
	Input     string `glazed.parameter:"input"`
}

// NewBatchLayer defines the parameters shared by every command that batches input.
func NewBatchLayer() (glzlayers.ParameterLayer, error) {
	return glzlayers.NewParameterLayer(
		BatchLayerSlug,
		"Batching settings",
		glzlayers.WithParameterDefinitions(
			parameters.NewParameterDefinition(
				"command",
				parameters.ParameterTypeString,
				parameters.WithShortFlag("c"),
				parameters.WithHelp("Shell command to run; the replacement string is substituted with the batch's temp files"),
				parameters.WithDefault(""),
			),
			parameters.NewParameterDefinition(
				"batch-size",
				parameters.ParameterTypeInteger,
				parameters.WithShortFlag("n"),
				parameters.WithHelp("Number of lines per command invocation"),
				parameters.WithDefault(1),
			),
			parameters.NewParameterDefinition(
				"replace",
				parameters.ParameterTypeString,
				parameters.WithShortFlag("J"),
				parameters.WithHelp("Replacement string for the temp file paths (required when batch-size > 1)"),
				parameters.WithDefault(""),
			),
			parameters.NewParameterDefinition(
				"shell",
				parameters.ParameterTypeString,
				parameters.WithHelp("POSIX shell used to run the command"),
				parameters.WithDefault(runner.DefaultShell),
			),
			parameters.NewParameterDefinition(
				"temp-dir",
				parameters.ParameterTypeString,
				parameters.WithHelp("Directory for the temp file pool (default: system temp dir)"),
				parameters.WithDefault(""),
			),
			parameters.NewParameterDefinition(
				"job-file",
				parameters.ParameterTypeString,
				parameters.WithShortFlag("f"),
				parameters.WithHelp("YAML job file; flags given on the command line override its values"),
				parameters.WithDefault(""),
			),
			parameters.NewParameterDefinition(
				"input",
				parameters.ParameterTypeString,
				parameters.WithShortFlag("i"),
				parameters.WithHelp("Input file; '-' for stdin"),
				parameters.WithDefault("-"),
			),
		),
	)
}

// AddBatchLayerToCommand attaches the layer to a Glazed command description.
func AddBatchLayerToCommand(c glzcms.Command) (glzcms.Command, error) {
	l, err := NewBatchLayer()
	if err != nil {
		return nil, err
	}
	c.Description().Layers.Set(BatchLayerSlug, l)
	return c, nil
}

// GetBatchSettings returns parsed batching settings from the ParsedLayers.
func GetBatchSettings(parsed *glzlayers.ParsedLayers) (*BatchSettings, error) {
	var s BatchSettings
	if err := parsed.InitializeStruct(BatchLayerSlug, &s); err != nil {
		return nil, fmt.Errorf("failed to parse batching settings: %w", err)
	}
	return &s, nil
}

// Config builds the run configuration from the batching settings. Job file
// values have already been merged into the settings by the job file middleware.
func (s *BatchSettings) Config() *batch.Config {
	return &batch.Config{
		Command:   s.Command,
		BatchSize: s.BatchSize,
		Replace:   s.Replace,
		Shell:     s.Shell,
		TempDir:   s.TempDir,
	}
}
