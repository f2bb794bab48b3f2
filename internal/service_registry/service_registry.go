package service_registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/benmeehan/trajsim/internal/registry"
	"github.com/benmeehan/trajsim/internal/services"
	"github.com/benmeehan/trajsim/internal/utils"
	"github.com/benmeehan/trajsim/pkg/file"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of the long-running tools.
type ServiceRegistry struct {
	services     map[string]registry.Service // Stores registered services
	serviceKeys  []string                    // Maintains order of service registration
	ingestClient services.IngestClient
	streamSink   services.Sink
	fileClient   file.FileOperations
	Logger       zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
// streamSink is the transport the streamer publishes to; it may be the ingest client itself.
func NewServiceRegistry(ingestClient services.IngestClient, streamSink services.Sink, fileClient file.FileOperations,
	logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:     make(map[string]registry.Service),
		ingestClient: ingestClient,
		streamSink:   streamSink,
		fileClient:   fileClient,
		Logger:       logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Len returns the number of registered services.
func (sr *ServiceRegistry) Len() int {
	return len(sr.serviceKeys)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// Wait blocks until ctx is cancelled. When every registered service finishes on its
// own, it also returns once all of them are done.
func (sr *ServiceRegistry) Wait(ctx context.Context) error {
	var finishers []registry.Finisher
	for _, name := range sr.serviceKeys {
		f, ok := sr.services[name].(registry.Finisher)
		if !ok {
			<-ctx.Done()
			return ctx.Err()
		}
		finishers = append(finishers, f)
	}

	for _, f := range finishers {
		select {
		case <-f.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	sr.Logger.Info().Msg("All services finished")
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    "stream",
			enabled: config.Services.Stream.Enabled,
			constructor: func() (registry.Service, error) {
				if sr.streamSink == nil {
					return nil, errors.New("no sink configured for the stream service")
				}
				return services.NewStreamService(
					config.Services.Stream.TagMAC,
					config.Services.Stream.Interval,
					config.Services.Stream.Delta,
					config.Services.Stream.Precision,
					sr.streamSink,
					nil,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "replay",
			enabled: config.Services.Replay.Enabled,
			constructor: func() (registry.Service, error) {
				if sr.ingestClient == nil {
					return nil, errors.New("no ingest client configured for the replay service")
				}
				return services.NewReplayService(
					services.ReplayOptions{
						DataDir:      config.Services.Replay.DataDir,
						Files:        config.Services.Replay.Files,
						AllFiles:     config.Services.Replay.AllFiles,
						BatchSize:    config.Services.Replay.BatchSize,
						Interval:     config.Services.Replay.Interval,
						RetryDelay:   config.Services.Replay.RetryDelay,
						CheckOnStart: config.Services.Replay.CheckOnStart,
					},
					sr.ingestClient,
					sr.fileClient,
					sr.Logger,
				), nil
			},
		},
	}

	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
