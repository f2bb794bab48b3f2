package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/benmeehan/trajsim/internal/utils"
	"github.com/benmeehan/trajsim/pkg/file"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "configs/config.yaml"

// app holds what every subcommand shares once the root command has run.
type app struct {
	configFile string
	logLevel   string

	config     *utils.Config
	fileClient file.FileOperations
	logger     zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{fileClient: file.NewFileService()}

	root := &cobra.Command{
		Use:           "trajsim",
		Short:         "Prepare, generate and replay tag trajectories against a tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", defaultConfigFile, "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newProcessCommand(a),
		newGenerateCommand(a),
		newStreamCommand(a),
		newReplayCommand(a),
		newRunCommand(a),
	)
	return root
}

// setup loads the configuration and builds the logger for the selected subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	config, loadErr := utils.LoadConfig(a.configFile, a.fileClient)
	missing := loadErr != nil && errors.Is(loadErr, os.ErrNotExist) && !cmd.Flags().Changed("config")
	if loadErr != nil && !missing {
		fmt.Fprintf(os.Stderr, "failed to load configuration %s: %v\n", a.configFile, loadErr)
		return loadErr
	}
	if missing {
		config = utils.DefaultConfig()
	}

	if a.logLevel != "" {
		config.Logging.Level = a.logLevel
	}

	a.config = config
	a.logger = utils.NewLogger(config, os.Stdout).With().
		Str("run_id", uuid.NewString()).
		Str("command", cmd.Name()).
		Logger()

	if missing {
		a.logger.Warn().Str("config", a.configFile).Msg("Configuration file not found, using defaults")
	}

	if err := config.Validate(); err != nil {
		a.logger.Error().Err(err).Msg("Invalid configuration")
		return err
	}
	return nil
}
