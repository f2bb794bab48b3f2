package services

import "context"

// Sink delivers a JSON-encodable batch of points. The returned code is the transport
// status (HTTP status code), or 0 for transports that have none.
type Sink interface {
	SendBatch(ctx context.Context, batch any) (int, error)
}

// IngestClient is a Sink that can also report whether the tracking API is alive.
type IngestClient interface {
	Sink
	CheckStatus(ctx context.Context) error
}
