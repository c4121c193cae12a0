package cmds

import (
	"context"
	"fmt"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-go-golems/xcopr/pkg/batch"
	"github.com/go-go-golems/xcopr/pkg/batchlayer"
	"github.com/go-go-golems/xcopr/pkg/lines"
	"github.com/go-go-golems/xcopr/pkg/pool"
)

type PlanCommand struct{ *gcmds.CommandDescription }

type PlanSettings struct {
	Materialize bool `glazed.parameter:"materialize"`
}

func NewPlanCommand() (*PlanCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"plan",
		gcmds.WithShort("Show the batches and rendered commands without running them"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("materialize", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Create the real temp file pool and render its paths (removed afterwards)")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	_, err = batchlayer.AddBatchLayerToCommand(cd)
	if err != nil {
		return nil, err
	}
	return &PlanCommand{cd}, nil
}

// GlazeCommand: one row per batch
func (c *PlanCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &PlanSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	bs, err := batchlayer.GetBatchSettings(parsed)
	if err != nil {
		return err
	}
	cfg := bs.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	in, closeIn, err := openInput(bs.Input)
	if err != nil {
		return err
	}
	defer closeIn()
	input, err := lines.Read(in)
	if err != nil {
		return err
	}

	slots := batch.SlotPlaceholders(cfg.TempDir, cfg.BatchSize)
	if s.Materialize {
		tp, err := pool.New(afero.NewOsFs(), cfg.TempDir, pool.DefaultPrefix, cfg.BatchSize)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to remove temp files")
			}
		}()
		slots = tp.Paths()
	}

	planned, err := batch.Plan(cfg, input, slots)
	if err != nil {
		return fmt.Errorf("failed to plan batches: %w", err)
	}
	for _, pb := range planned {
		row := types.NewRow(
			types.MRP("batch", pb.Number),
			types.MRP("offset", pb.Offset),
			types.MRP("lines", len(pb.Lines)),
			types.MRP("first", pb.Lines[0]),
			types.MRP("last", pb.Lines[len(pb.Lines)-1]),
			types.MRP("command", pb.Command),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &PlanCommand{}
