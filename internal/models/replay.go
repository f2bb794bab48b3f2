package models

import "time"

// FileReport summarises the replay of a single trajectory file.
type FileReport struct {
	File          string    `json:"file"`
	WorkerID      int       `json:"worker_id"`
	TotalPoints   int       `json:"total_points"`
	SentPoints    int       `json:"sent_points"`
	BatchesSent   int       `json:"batches_sent"`
	BatchesFailed int       `json:"batches_failed"`
	StatusRetries int       `json:"status_retries"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Done reports whether the worker for this file has finished.
func (r FileReport) Done() bool {
	return !r.FinishedAt.IsZero()
}
