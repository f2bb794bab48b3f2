package main

import (
	"time"

	"github.com/benmeehan/trajsim/internal/services"
	"github.com/spf13/cobra"
)

func newStreamCommand(a *app) *cobra.Command {
	var (
		transport string
		interval  time.Duration
		baseURL   string
		tagMAC    string
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream one random-walk point per interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &a.config.Services.Stream
			if cmd.Flags().Changed("transport") {
				cfg.Transport = transport
			}
			if cmd.Flags().Changed("interval") {
				cfg.Interval = interval
			}
			if cmd.Flags().Changed("tag") {
				cfg.TagMAC = tagMAC
			}
			if cmd.Flags().Changed("url") {
				a.config.Ingest.BaseURL = baseURL
			}
			if err := a.config.Validate(); err != nil {
				a.logger.Error().Err(err).Msg("Invalid stream options")
				return err
			}

			client, err := a.newIngestClient()
			if err != nil {
				return err
			}
			sink, release, err := a.newStreamSink(client)
			if err != nil {
				return err
			}
			defer release()

			stream := services.NewStreamService(cfg.TagMAC, cfg.Interval, cfg.Delta, cfg.Precision, sink, nil, a.logger)
			if err := stream.Start(); err != nil {
				return err
			}

			<-cmd.Context().Done()
			a.logger.Info().Msg("Shutting down gracefully...")
			return stream.Stop()
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "", "http or mqtt (default services.stream.transport)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between points (default services.stream.interval)")
	cmd.Flags().StringVar(&baseURL, "url", "", "tracking API base URL (default ingest.base_url)")
	cmd.Flags().StringVar(&tagMAC, "tag", "", "MAC of the simulated tag (default services.stream.tag_mac)")
	return cmd
}
