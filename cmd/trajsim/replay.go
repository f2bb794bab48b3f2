package main

import (
	"time"

	"github.com/benmeehan/trajsim/internal/services"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newReplayCommand(a *app) *cobra.Command {
	var (
		files     []string
		allFiles  bool
		dataDir   string
		batchSize int
		interval  time.Duration
		noCheck   bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay trajectory files to the batch ingest endpoint",
		Long: "Replay one or more trajectory files in batches. With --all every *.json file in the\n" +
			"data directory is replayed concurrently, one worker per file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &a.config.Services.Replay
			if cmd.Flags().Changed("file") {
				cfg.Files = files
				cfg.AllFiles = false
			}
			if cmd.Flags().Changed("all") {
				cfg.AllFiles = allFiles
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if cmd.Flags().Changed("interval") {
				cfg.Interval = interval
			}
			if noCheck {
				cfg.CheckOnStart = false
			}
			if err := a.config.Validate(); err != nil {
				a.logger.Error().Err(err).Msg("Invalid replay options")
				return err
			}

			client, err := a.newIngestClient()
			if err != nil {
				return err
			}

			replay := services.NewReplayService(services.ReplayOptions{
				DataDir:      cfg.DataDir,
				Files:        cfg.Files,
				AllFiles:     cfg.AllFiles,
				BatchSize:    cfg.BatchSize,
				Interval:     cfg.Interval,
				RetryDelay:   cfg.RetryDelay,
				CheckOnStart: cfg.CheckOnStart,
			}, client, a.fileClient, a.logger)

			if err := replay.StartContext(cmd.Context()); err != nil {
				return err
			}

			if err := replay.Wait(cmd.Context()); err != nil {
				a.logger.Warn().Msg("Replay interrupted, stopping workers")
			}
			if err := replay.Stop(); err != nil {
				return err
			}

			for _, report := range replay.Reports() {
				level, problem := zerolog.InfoLevel, report.Error
				if problem == "" && !report.Done() {
					problem = "worker did not finish"
				}
				if problem != "" {
					level = zerolog.WarnLevel
				}
				a.logger.WithLevel(level).
					Str("error", problem).
					Str("file", report.File).
					Int("sent_points", report.SentPoints).
					Int("total_points", report.TotalPoints).
					Int("failed_batches", report.BatchesFailed).
					Int("status_retries", report.StatusRetries).
					Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
					Msg("File report")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "trajectory file under the data directory, repeatable")
	cmd.Flags().BoolVarP(&allFiles, "all", "a", false, "replay every *.json file in the data directory")
	cmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "directory holding trajectory files (default services.replay.data_dir)")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "points per request (default services.replay.batch_size)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "pause between batches (default services.replay.interval)")
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "skip the liveness check before starting")
	return cmd
}
