package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/benmeehan/trajsim/internal/models"
	"github.com/benmeehan/trajsim/internal/utils"
	"github.com/benmeehan/trajsim/pkg/file"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrNoReplayFiles is returned by Start when no trajectory file is left to replay.
var ErrNoReplayFiles = errors.New("no trajectory files to replay")

// ReplayOptions selects the files to replay and how fast to send them.
type ReplayOptions struct {
	DataDir      string
	Files        []string
	AllFiles     bool
	BatchSize    int
	Interval     time.Duration
	RetryDelay   time.Duration
	CheckOnStart bool
}

// ReplayService replays trajectory files against the batch-ingest endpoint,
// one worker per file. Workers share nothing but the report map.
type ReplayService struct {
	opts       ReplayOptions
	client     IngestClient
	fileClient file.FileOperations
	logger     zerolog.Logger

	reports cmap.ConcurrentMap[string, models.FileReport]

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReplayService creates a ReplayService.
func NewReplayService(opts ReplayOptions, client IngestClient, fileClient file.FileOperations, logger zerolog.Logger) *ReplayService {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	return &ReplayService{
		opts:       opts,
		client:     client,
		fileClient: fileClient,
		logger:     logger.With().Str("service", "replay").Logger(),
		reports:    cmap.New[models.FileReport](),
	}
}

// Start resolves the input files, optionally checks the API once, and launches one
// worker per file. It returns without waiting for the replay to finish.
func (r *ReplayService) Start() error {
	return r.StartContext(context.Background())
}

// StartContext is Start with a context bounding the start-up liveness check.
// The workers themselves run until they finish or Stop is called.
func (r *ReplayService) StartContext(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx != nil {
		select {
		case <-r.done:
			// previous run finished on its own
			r.cancel()
		default:
			r.logger.Warn().Msg("ReplayService is already running")
			return errors.New("replay service is already running")
		}
	}

	files, err := r.resolveFiles()
	if err != nil {
		r.logger.Error().Err(err).Str("data_dir", r.opts.DataDir).Msg("No trajectory files found")
		return err
	}

	if r.opts.CheckOnStart {
		if err := r.client.CheckStatus(ctx); err != nil {
			r.logger.Error().Err(err).Msg("Tracking API is not reachable, check that the backend is running")
			return fmt.Errorf("tracking api unavailable: %w", err)
		}
		r.logger.Info().Msg("Tracking API is online")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.ctx, r.cancel = runCtx, cancel
	r.done = make(chan struct{})
	r.reports.Clear()

	pool := utils.NewWorkerPool(len(files))
	for workerID, path := range files {
		if err := pool.Submit(func() { r.replayFile(runCtx, path, workerID) }); err != nil {
			r.logger.Error().Err(err).Str("file", path).Msg("Failed to schedule replay")
		}
	}

	go func(done chan struct{}) {
		pool.Shutdown()
		r.logSummary()
		close(done)
	}(r.done)

	r.logger.Info().
		Int("files", len(files)).
		Int("workers", pool.Size()).
		Int("batch_size", r.opts.BatchSize).
		Dur("interval", r.opts.Interval).
		Msg("ReplayService started")
	return nil
}

// Stop cancels all workers and waits for them to exit.
func (r *ReplayService) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil {
		r.logger.Warn().Msg("ReplayService is not running")
		return errors.New("replay service is not running")
	}

	r.cancel()
	<-r.done

	r.ctx = nil
	r.cancel = nil

	r.logger.Info().Msg("ReplayService stopped")
	return nil
}

// Done is closed once every worker has finished. It is nil before the first Start.
func (r *ReplayService) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Wait blocks until every worker has finished or ctx is cancelled.
func (r *ReplayService) Wait(ctx context.Context) error {
	done := r.Done()
	if done == nil {
		return errors.New("replay service was never started")
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reports returns a snapshot of every file's progress, ordered by worker id.
func (r *ReplayService) Reports() []models.FileReport {
	reports := make([]models.FileReport, 0, r.reports.Count())
	for _, report := range r.reports.Items() {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].WorkerID < reports[j].WorkerID })
	return reports
}

// resolveFiles returns the existing files to replay, as paths under DataDir.
func (r *ReplayService) resolveFiles() ([]string, error) {
	names := r.opts.Files
	if r.opts.AllFiles {
		listed, err := r.fileClient.ListFiles(r.opts.DataDir, ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", r.opts.DataDir, err)
		}
		names = listed
	}

	var paths []string
	for _, name := range utils.Dedupe(names) {
		path := name
		if !filepath.IsAbs(name) {
			path = filepath.Join(r.opts.DataDir, name)
		}

		exists, err := r.fileClient.IsFileExists(path)
		if err != nil || !exists {
			r.logger.Error().Err(err).Str("file", path).Msg("Trajectory file does not exist")
			continue
		}
		r.logger.Info().Str("file", filepath.Base(path)).Msg("Found trajectory file")
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, ErrNoReplayFiles
	}
	return paths, nil
}

// replayFile sends one file in batches, pausing while the API is down.
func (r *ReplayService) replayFile(ctx context.Context, path string, workerID int) {
	name := filepath.Base(path)
	logger := r.logger.With().Int("worker", workerID).Str("file", name).Logger()

	report := models.FileReport{File: name, WorkerID: workerID, StartedAt: time.Now()}
	r.reports.Set(path, report)
	defer func() {
		report.FinishedAt = time.Now()
		r.reports.Set(path, report)
	}()

	logger.Info().Msg("Replay of file started")

	var records []json.RawMessage
	if err := r.fileClient.ReadJsonFile(path, &records); err != nil {
		logger.Error().Err(err).Msg("Failed to load trajectory file")
		report.Error = err.Error()
		return
	}
	if len(records) == 0 {
		logger.Warn().Msg("Trajectory file holds no points")
		report.Error = "no points in file"
		return
	}

	report.TotalPoints = len(records)
	logger.Info().Int("points", report.TotalPoints).Msg("Trajectory file loaded")

	limit := rate.Inf
	if r.opts.Interval > 0 {
		limit = rate.Every(r.opts.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	batches := utils.Chunk(records, r.opts.BatchSize)
	processed := 0

	for next := 0; next < len(batches); {
		if err := r.client.CheckStatus(ctx); err != nil {
			if ctx.Err() != nil {
				report.Error = ctx.Err().Error()
				return
			}
			report.StatusRetries++
			r.reports.Set(path, report)
			logger.Warn().Err(err).Dur("retry_in", r.opts.RetryDelay).Msg("Tracking API unavailable, pausing")
			if !sleep(ctx, r.opts.RetryDelay) {
				report.Error = ctx.Err().Error()
				return
			}
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			report.Error = err.Error()
			return
		}

		batch := batches[next]
		code, err := r.client.SendBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				report.Error = ctx.Err().Error()
				return
			}
			report.BatchesFailed++
			logger.Error().Err(err).Int("status", code).Msg("Failed to send batch")
		} else {
			report.BatchesSent++
			report.SentPoints += len(batch)
			logger.Info().Int("points", len(batch)).Int("status", code).Msg("Batch sent")
		}

		next++
		processed += len(batch)
		r.reports.Set(path, report)
		logger.Info().Msg(utils.ProgressBar(processed, report.TotalPoints, utils.ProgressBarWidth))
	}

	logger.Info().
		Int("sent_points", report.SentPoints).
		Int("failed_batches", report.BatchesFailed).
		Msg("Replay of file finished")
}

func (r *ReplayService) logSummary() {
	var sent, total, failed int
	reports := r.Reports()
	for _, report := range reports {
		sent += report.SentPoints
		total += report.TotalPoints
		failed += report.BatchesFailed
	}

	r.logger.Info().
		Int("files", len(reports)).
		Int("total_points", total).
		Int("sent_points", sent).
		Int("failed_batches", failed).
		Msg("All trajectory files processed")
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
