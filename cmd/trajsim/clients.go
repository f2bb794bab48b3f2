package main

import (
	"github.com/benmeehan/trajsim/internal/services"
	"github.com/benmeehan/trajsim/internal/utils"
	"github.com/benmeehan/trajsim/pkg/ingest"
	"github.com/benmeehan/trajsim/pkg/mqtt"
	"github.com/google/uuid"
)

// mqttDisconnectQuiesce is how long, in milliseconds, paho may spend flushing on disconnect.
const mqttDisconnectQuiesce = 250

func (a *app) newIngestClient() (*ingest.Client, error) {
	client, err := ingest.NewClient(ingest.Options{
		BaseURL:       a.config.Ingest.BaseURL,
		BatchPath:     a.config.Ingest.BatchPath,
		StatusPath:    a.config.Ingest.StatusPath,
		StatusTimeout: a.config.Ingest.StatusTimeout,
		SendTimeout:   a.config.Ingest.SendTimeout,
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to create ingest client")
		return nil, err
	}
	a.logger.Info().Str("batch_url", client.BatchURL()).Str("status_url", client.StatusURL()).Msg("Using tracking API")
	return client, nil
}

// newStreamSink returns the sink the streamer publishes to and a function releasing it.
func (a *app) newStreamSink(client *ingest.Client) (services.Sink, func(), error) {
	if a.config.Services.Stream.Transport != utils.TransportMQTT {
		return client, func() {}, nil
	}

	// Generate a unique MQTT Client ID by appending a UUID
	clientID := a.config.MQTT.ClientID + "-" + uuid.NewString()
	a.logger.Info().Str("client_id", clientID).Str("broker", a.config.MQTT.Broker).Msg("Connecting to MQTT broker")

	mqttClient := mqtt.NewMqttService(a.fileClient)
	if err := mqttClient.Initialize(a.config.MQTT.Broker, clientID, a.config.MQTT.CACertificate, a.config.MQTT.ConnectTimeout); err != nil {
		a.logger.Error().Err(err).Msg("Failed to initialize MQTT connection")
		return nil, nil, err
	}

	publisher := mqtt.NewBatchPublisher(mqttClient, a.config.MQTT.Topic, a.config.MQTT.QOS, a.config.MQTT.PublishTimeout)
	return publisher, func() { mqttClient.Disconnect(mqttDisconnectQuiesce) }, nil
}
