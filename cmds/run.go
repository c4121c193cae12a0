package cmds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/xcopr/pkg/batch"
	"github.com/go-go-golems/xcopr/pkg/batchlayer"
	"github.com/go-go-golems/xcopr/pkg/cmdutil"
	"github.com/go-go-golems/xcopr/pkg/output"
)

type RunCommand struct{ *gcmds.CommandDescription }

type RunSettings struct {
	OutputFormat      string `glazed.parameter:"output-format"`
	StrictCorrelation bool   `glazed.parameter:"strict-correlation"`
	NoColor           bool   `glazed.parameter:"no-color"`
}

func NewRunCommand() (*RunCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}

	cd := gcmds.NewCommandDescription(
		"run",
		gcmds.WithShort("Batch input lines into temp files and run a command per batch"),
		gcmds.WithLong(`Reads all input lines, writes each batch of lines into a pool of reusable
temp files (one line per file) and runs the command with the replacement
string substituted by the quoted file paths. Output lines are paired with
the input lines in order. The first failing batch stops the run.

Example:
  printf 'foo\nbar\nbaz\n' | xcopr run -c 'wc -c {}' -n 2 -J {}`),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("output-format", parameters.ParameterTypeChoice, parameters.WithChoices(output.Formats...), parameters.WithDefault(string(output.FormatPlain)), parameters.WithHelp("Record format: plain output lines, input<TAB>output pairs, or JSON lines")),
			parameters.NewParameterDefinition("strict-correlation", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Fail when a batch prints a different number of lines than it was given")),
			parameters.NewParameterDefinition("no-color", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Disable colored diagnostics")),
		),
		gcmds.WithLayersList(layer),
	)
	_, err = batchlayer.AddBatchLayerToCommand(cd)
	if err != nil {
		return nil, err
	}
	return &RunCommand{cd}, nil
}

func (c *RunCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &RunSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	bs, err := batchlayer.GetBatchSettings(parsed)
	if err != nil {
		return err
	}
	output.InitConsole(s.NoColor)

	cfg := bs.Config()
	cfg.OutputFormat = s.OutputFormat
	cfg.StrictCorrelation = s.StrictCorrelation

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runBatches(ctx, cfg, bs.Input)
	if err != nil {
		log.Debug().Err(err).Msg("run failed")
	}
	stop()
	cmdutil.ExitOnError(os.Stderr, err)
	return nil
}

// runBatches returns only after the temp file pool has been removed.
func runBatches(ctx context.Context, cfg *batch.Config, input string) error {
	// configuration errors must surface before the input is opened
	if err := cfg.Validate(); err != nil {
		return err
	}
	in, closeIn, err := openInput(input)
	if err != nil {
		return err
	}
	defer closeIn()

	proc := batch.NewProcessor()
	sum, err := proc.Process(ctx, cfg, in)
	log.Debug().
		Int("lines", sum.Lines).
		Int("batches", sum.Batches).
		Int("done", sum.Done).
		Int("records", sum.Records).
		Msg("run summary")
	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(os.Stderr, output.Notef("interrupted after %d of %d batches; temp files removed", sum.Done, sum.Batches))
	}
	return err
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

var _ gcmds.BareCommand = &RunCommand{}
