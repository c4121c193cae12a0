package glazed

import (
	"fmt"

	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	gmiddlewares "github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/xcopr/pkg/batch"
	"github.com/go-go-golems/xcopr/pkg/batchlayer"
)

const jobFileFlag = "job-file"

// UpdateFromJobFile loads a YAML job file and updates matching parameters
// across all layers. A parameter is updated when the job file sets the key
// of the same name (batch_size sets batch-size).
//
// Place it after ParseFromCobraCommand in the middleware list so that flags
// given on the command line still win over the job file:
//
//	middlewares.ParseFromCobraCommand(cmd, parameters.WithParseStepSource("cobra")),
//	glazed.UpdateFromJobFile(cmd, parameters.WithParseStepSource("job-file")),
//	middlewares.GatherFlagsFromViper(parameters.WithParseStepSource("viper")),
//	middlewares.SetFromDefaults(parameters.WithParseStepSource("defaults")),
//
// The job file path is taken from the --job-file flag, or from viper/defaults
// when the flag was not given.
func UpdateFromJobFile(cmd *cobra.Command, options ...parameters.ParseStepOption) gmiddlewares.Middleware {
	return func(next gmiddlewares.HandlerFunc) gmiddlewares.HandlerFunc {
		return func(layers *glayers.ParameterLayers, parsed *glayers.ParsedLayers) error {
			// Run the rest of the chain first; then apply job file values.
			if err := next(layers, parsed); err != nil {
				return err
			}

			path := jobFilePath(cmd, parsed)
			if path == "" {
				return nil
			}
			cfg, err := batch.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load job file %s: %w", path, err)
			}
			values := cfg.Values()
			log.Debug().Str("path", path).Int("keys", len(values)).Msg("job file loaded")

			// Update matching parameters across all layers
			return layers.ForEachE(func(_ string, l glayers.ParameterLayer) error {
				parsedLayer := parsed.GetOrCreate(l)
				pds := l.GetParameterDefinitions()
				return pds.ForEachE(func(pd *parameters.ParameterDefinition) error {
					if v, ok := values[pd.Name]; ok {
						if err := parsedLayer.Parameters.UpdateValue(pd.Name, pd, v, options...); err != nil {
							return err
						}
					}
					return nil
				})
			})
		}
	}
}

func jobFilePath(cmd *cobra.Command, parsed *glayers.ParsedLayers) string {
	if cmd != nil {
		if f := cmd.Flags().Lookup(jobFileFlag); f != nil && f.Changed {
			return f.Value.String()
		}
	}
	bs, err := batchlayer.GetBatchSettings(parsed)
	if err != nil {
		return ""
	}
	return bs.JobFile
}
