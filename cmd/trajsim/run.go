package main

import (
	"errors"

	"github.com/benmeehan/trajsim/internal/service_registry"
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every long-running tool enabled in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newIngestClient()
			if err != nil {
				return err
			}
			sink, release, err := a.newStreamSink(client)
			if err != nil {
				return err
			}
			defer release()

			serviceRegistry := service_registry.NewServiceRegistry(client, sink, a.fileClient, a.logger)
			if err := serviceRegistry.RegisterServices(a.config); err != nil {
				return err
			}
			if serviceRegistry.Len() == 0 {
				a.logger.Warn().Msg("No service enabled, set services.stream.enabled or services.replay.enabled")
				return errors.New("no service enabled")
			}

			if err := serviceRegistry.StartServices(); err != nil {
				return err
			}
			a.logger.Info().Msg("All services started successfully")

			_ = serviceRegistry.Wait(cmd.Context())

			a.logger.Info().Msg("Shutting down gracefully...")
			return serviceRegistry.StopServices()
		},
	}
}
