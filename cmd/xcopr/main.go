package main

import (
	clay "github.com/go-go-golems/clay/pkg"
	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/help"
	help_cmd "github.com/go-go-golems/glazed/pkg/help/cmd"
	"github.com/spf13/cobra"

	appcmds "github.com/go-go-golems/xcopr/cmds"
	appdoc "github.com/go-go-golems/xcopr/pkg/doc"
	xglazed "github.com/go-go-golems/xcopr/pkg/glazed"
)

var version = "dev"

func getMiddlewares(parsedLayers *layers.ParsedLayers, cmd *cobra.Command, args []string) ([]middlewares.Middleware, error) {
	commandSettings := &cli.CommandSettings{}
	err := parsedLayers.InitializeStruct(cli.CommandSettingsSlug, commandSettings)
	if err != nil {
		return nil, err
	}

	mw_ := []middlewares.Middleware{
		middlewares.ParseFromCobraCommand(cmd,
			parameters.WithParseStepSource("cobra"),
		),
		middlewares.GatherArguments(args,
			parameters.WithParseStepSource("arguments"),
		),
		xglazed.UpdateFromJobFile(cmd,
			parameters.WithParseStepSource("job-file"),
		),
	}

	mw_ = append(mw_,
		middlewares.GatherFlagsFromViper(parameters.WithParseStepSource("viper")),
		middlewares.SetFromDefaults(parameters.WithParseStepSource("defaults")),
	)

	return mw_, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "xcopr",
		Short:   "Batch stdin lines into temp files and run a shell command per batch",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			err := logging.InitLoggerFromViper()
			cobra.CheckErr(err)
		},
	}

	clay.InitViper("xcopr", rootCmd)

	// Help system
	hs := help.NewHelpSystem()
	_ = appdoc.AddDocToHelpSystem(hs)
	help_cmd.SetupCobraRootCommand(hs, rootCmd)

	opts := []cli.CobraOption{
		cli.WithParserConfig(cli.CobraParserConfig{
			MiddlewaresFunc: getMiddlewares,
		}),
	}

	rc, err := appcmds.NewRunCommand()
	cobra.CheckErr(err)
	cmd, err := cli.BuildCobraCommand(rc, opts...)
	cobra.CheckErr(err)
	rootCmd.AddCommand(cmd)

	pc, err := appcmds.NewPlanCommand()
	cobra.CheckErr(err)
	cmd, err = cli.BuildCobraCommand(pc, opts...)
	cobra.CheckErr(err)
	rootCmd.AddCommand(cmd)

	cobra.CheckErr(rootCmd.Execute())
}
