package mqtt_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/trajsim/internal/mocks"
	"github.com/benmeehan/trajsim/internal/models"
	"github.com/benmeehan/trajsim/pkg/mqtt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBatchPublisher_SendBatch(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	batch := []models.StreamPoint{{Mac: "84FD27EEE605", X: 0.5, Y: -0.25, Timestamp: "2024-01-01 10:00:00"}}
	expected, err := json.Marshal(batch)
	require.NoError(t, err)

	client.On("Publish", "realtime/paths/batch", byte(1), false, expected).Return(mocks.NewCompletedToken(nil))

	publisher := mqtt.NewBatchPublisher(client, "realtime/paths/batch", 1, time.Second)
	code, err := publisher.SendBatch(context.Background(), batch)

	assert.NoError(t, err)
	assert.Equal(t, 0, code)
	client.AssertExpectations(t)
}

func TestBatchPublisher_PublishError(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.NewCompletedToken(errors.New("not connected")))

	publisher := mqtt.NewBatchPublisher(client, "topic", 0, time.Second)
	_, err := publisher.SendBatch(context.Background(), []int{1})

	assert.ErrorContains(t, err, "not connected")
}

func TestBatchPublisher_Timeout(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.NewPendingToken())

	publisher := mqtt.NewBatchPublisher(client, "topic", 1, 20*time.Millisecond)
	_, err := publisher.SendBatch(context.Background(), []int{1})

	assert.ErrorContains(t, err, "timed out")
}

func TestBatchPublisher_ContextCancelled(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.NewPendingToken())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	publisher := mqtt.NewBatchPublisher(client, "topic", 1, time.Minute)
	_, err := publisher.SendBatch(ctx, []int{1})

	assert.ErrorIs(t, err, context.Canceled)
}
