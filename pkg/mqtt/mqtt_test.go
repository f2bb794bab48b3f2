package mqtt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/trajsim/internal/mocks"
	"github.com/benmeehan/trajsim/pkg/mqtt"
	"github.com/stretchr/testify/assert"
)

func TestMqttService_Initialize_CACertificateErrors(t *testing.T) {
	t.Run("unreadable certificate", func(t *testing.T) {
		fileClient := new(mocks.MockFileOperations)
		fileClient.On("ReadFileRaw", "certs/ca.pem").Return(nil, errors.New("permission denied"))

		s := mqtt.NewMqttService(fileClient)
		err := s.Initialize("ssl://localhost:8883", "trajsim-test", "certs/ca.pem", time.Second)

		assert.ErrorContains(t, err, "failed to read CA certificate")
	})

	t.Run("not a PEM certificate", func(t *testing.T) {
		fileClient := new(mocks.MockFileOperations)
		fileClient.On("ReadFileRaw", "certs/ca.pem").Return([]byte("not a certificate"), nil)

		s := mqtt.NewMqttService(fileClient)
		err := s.Initialize("ssl://localhost:8883", "trajsim-test", "certs/ca.pem", time.Second)

		assert.ErrorContains(t, err, "failed to append CA certificate")
	})
}

func TestMqttService_DisconnectWithoutClient(t *testing.T) {
	s := mqtt.NewMqttService(new(mocks.MockFileOperations))
	assert.NotPanics(t, func() { s.Disconnect(250) })
}
