package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/trajsim/internal/models"
	"github.com/benmeehan/trajsim/pkg/randwalk"
	"github.com/rs/zerolog"
)

// StreamService simulates one moving tag by sending a single random-walk point
// to a Sink at a fixed interval.
type StreamService struct {
	// Configuration fields
	tagMAC    string
	interval  time.Duration
	precision int

	// Dependencies
	sink   Sink
	walker *randwalk.Walker
	logger zerolog.Logger
	now    func() time.Time

	// Internal state management
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	sent    int
	failed  int
}

// NewStreamService creates a StreamService whose tag starts at (0, 0) and moves
// up to delta on each axis between points.
func NewStreamService(tagMAC string, interval time.Duration, delta float64, precision int,
	sink Sink, walker *randwalk.Walker, logger zerolog.Logger) *StreamService {
	if walker == nil {
		walker = randwalk.NewWalker(0, 0, delta, randwalk.NewRand(0))
	}
	return &StreamService{
		tagMAC:    tagMAC,
		interval:  interval,
		precision: precision,
		sink:      sink,
		walker:    walker,
		logger:    logger.With().Str("service", "stream").Logger(),
		now:       time.Now,
	}
}

// Start launches the streaming loop in a separate goroutine.
func (s *StreamService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		s.logger.Warn().Msg("StreamService is already running")
		return errors.New("stream service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		s.runStreamLoop(ctx)
	}(s.ctx)

	s.logger.Info().
		Str("tag_mac", s.tagMAC).
		Dur("interval", s.interval).
		Msg("StreamService started")
	return nil
}

// Stop gracefully stops the streaming loop.
func (s *StreamService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		s.logger.Warn().Msg("StreamService is not running")
		return errors.New("stream service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	sent, failed := s.Counts()
	s.logger.Info().Int("sent", sent).Int("failed", failed).Msg("StreamService stopped")
	return nil
}

// Counts returns how many points were sent successfully and how many failed.
func (s *StreamService) Counts() (sent, failed int) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.sent, s.failed
}

// runStreamLoop sends the first point immediately and then one per interval.
func (s *StreamService) runStreamLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sendCurrentPoint(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			s.logger.Info().Msg("StreamService stopping gracefully")
			return
		}
	}
}

// sendCurrentPoint sends the current position and then advances the walk.
func (s *StreamService) sendCurrentPoint(ctx context.Context) {
	point := models.StreamPoint{
		Mac:       s.tagMAC,
		X:         randwalk.Round(s.walker.X, s.precision),
		Y:         randwalk.Round(s.walker.Y, s.precision),
		Timestamp: s.now().Format(models.WallClockLayout),
	}

	code, err := s.sink.SendBatch(ctx, []models.StreamPoint{point})

	s.statsMu.Lock()
	if err != nil {
		s.failed++
	} else {
		s.sent++
	}
	s.statsMu.Unlock()

	switch {
	case err != nil && ctx.Err() != nil:
		// shutting down
	case err != nil:
		s.logger.Error().Err(err).Int("status", code).Msg("Failed to send point")
	default:
		event := s.logger.Info().Float64("x", point.X).Float64("y", point.Y)
		if code != 0 {
			event = event.Int("status", code)
		}
		event.Msg("Point sent")
	}

	s.walker.Next()
}
