package main

import (
	"github.com/benmeehan/trajsim/internal/dataset"
	"github.com/benmeehan/trajsim/pkg/randwalk"
	"github.com/spf13/cobra"
)

func newProcessCommand(a *app) *cobra.Command {
	var (
		input  string
		output string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Reduce a raw trajectory file to the ingest record shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config.Services.Process
			if cmd.Flags().Changed("input") {
				cfg.InputFile = input
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputFile = output
			}

			processor := dataset.NewProcessor(dataset.ProcessOptions{
				RSSIMin:    cfg.RSSI.Min,
				RSSIMax:    cfg.RSSI.Max,
				BatteryMin: cfg.Battery.Min,
				BatteryMax: cfg.Battery.Max,
				MapID:      cfg.MapID,
			}, a.fileClient, randwalk.NewRand(seed), a.logger)

			summary, err := processor.Process(cmd.Context(), cfg.InputFile, cfg.OutputFile)
			if err != nil {
				a.logger.Error().Err(err).Msg("Processing failed")
				return err
			}

			a.logger.Info().
				Str("input", summary.InputFile).
				Int("input_records", summary.InputCount).
				Int("output_records", summary.OutputCount).
				Str("output", summary.OutputFile).
				Msg("Processing completed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "raw trajectory file (default services.process.input_file)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default services.process.output_file)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for injected values, 0 picks one")
	return cmd
}
