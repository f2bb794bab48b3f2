package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// BatchPublisher publishes JSON-encoded point batches to a single topic.
type BatchPublisher struct {
	client  MQTTClient
	topic   string
	qos     byte
	timeout time.Duration
}

// NewBatchPublisher creates a publisher on top of an initialized client.
func NewBatchPublisher(client MQTTClient, topic string, qos int, timeout time.Duration) *BatchPublisher {
	return &BatchPublisher{
		client:  client,
		topic:   topic,
		qos:     byte(qos),
		timeout: timeout,
	}
}

// SendBatch publishes the batch and waits for the broker acknowledgement.
// MQTT has no status code, so the returned code is always 0.
func (p *BatchPublisher) SendBatch(ctx context.Context, batch any) (int, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("failed to encode batch: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)

	var expired <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-token.Done():
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-expired:
		return 0, fmt.Errorf("timed out publishing to %s", p.topic)
	}

	if err := token.Error(); err != nil {
		return 0, fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	return 0, nil
}
