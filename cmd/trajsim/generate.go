package main

import (
	"time"

	"github.com/benmeehan/trajsim/internal/dataset"
	"github.com/benmeehan/trajsim/pkg/randwalk"
	"github.com/spf13/cobra"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		points    int
		outputDir string
		tagMAC    string
		seed      uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic random-walk trajectory file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config.Services.Generate
			if cmd.Flags().Changed("points") {
				cfg.NumPoints = points
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("tag") {
				cfg.TagMAC = tagMAC
			}

			generator, err := dataset.NewGenerator(dataset.GenerateOptions{
				NumPoints:  cfg.NumPoints,
				Interval:   cfg.Interval,
				TagMAC:     cfg.TagMAC,
				XRange:     randwalk.Bounds{Min: cfg.XRange.Min, Max: cfg.XRange.Max},
				YRange:     randwalk.Bounds{Min: cfg.YRange.Min, Max: cfg.YRange.Max},
				Step:       cfg.Step,
				RSSIMin:    cfg.RSSI.Min,
				RSSIMax:    cfg.RSSI.Max,
				BatteryMin: cfg.Battery.Min,
				BatteryMax: cfg.Battery.Max,
				MapID:      cfg.MapID,
			}, a.fileClient, randwalk.NewRand(seed), a.logger)
			if err != nil {
				a.logger.Error().Err(err).Msg("Invalid generator options")
				return err
			}

			now := time.Now()
			trajectory, err := generator.Generate(cmd.Context(), now)
			if err != nil {
				a.logger.Error().Err(err).Msg("Generation interrupted")
				return err
			}

			path, err := generator.Save(trajectory, cfg.OutputDir, now)
			if err != nil {
				a.logger.Error().Err(err).Msg("Failed to save trajectory")
				return err
			}

			summary, err := dataset.Summarize(trajectory)
			if err != nil {
				return err
			}

			a.logger.Info().
				Str("file", path).
				Str("tag_mac", summary.TagMAC).
				Int("points", summary.Count).
				Float64("span_seconds", summary.Span.Seconds()).
				Float64("span_minutes", summary.Span.Minutes()).
				Time("first", summary.Start).
				Time("last", summary.End).
				Msg("Trajectory generated")
			for i, p := range summary.Samples {
				a.logger.Info().
					Int("index", i).
					Stringer("timestamp", p.Timestamp).
					Float64("x", p.X).
					Float64("y", p.Y).
					Int("rssi", p.RSSI).
					Int("battery", p.Battery).
					Msg("Sample point")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&points, "points", "n", 0, "number of points (default services.generate.num_points)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default services.generate.output_dir)")
	cmd.Flags().StringVar(&tagMAC, "tag", "", "tag MAC to use instead of a random one")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 picks one")
	return cmd
}
