package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/benmeehan/trajsim/internal/models"
	"github.com/benmeehan/trajsim/pkg/file"
	"github.com/benmeehan/trajsim/pkg/randwalk"
	"github.com/rs/zerolog"
)

const (
	generatedFilePrefix = "generated_trajectory_"
	generatedFileLayout = "20060102_150405"
	coordinateDecimals  = 15
	progressEvery       = 100
)

// GenerateOptions parameterises a synthetic trajectory.
type GenerateOptions struct {
	NumPoints  int
	Interval   time.Duration
	TagMAC     string // random when empty
	XRange     randwalk.Bounds
	YRange     randwalk.Bounds
	Step       float64
	RSSIMin    int
	RSSIMax    int
	BatteryMin int
	BatteryMax int
	MapID      int
}

// Validate rejects options that cannot produce a trajectory.
func (o GenerateOptions) Validate() error {
	switch {
	case o.NumPoints < 1:
		return fmt.Errorf("number of points must be >= 1, got %d", o.NumPoints)
	case o.XRange.Min > o.XRange.Max, o.YRange.Min > o.YRange.Max:
		return errors.New("coordinate ranges must have min <= max")
	case o.RSSIMin > o.RSSIMax, o.BatteryMin > o.BatteryMax:
		return errors.New("rssi and battery ranges must have min <= max")
	case o.Step < 0:
		return errors.New("step must not be negative")
	}
	return nil
}

// TrajectorySummary holds the statistics logged after generation.
type TrajectorySummary struct {
	TagMAC  string
	Count   int
	Start   time.Time
	End     time.Time
	Span    time.Duration
	Samples []models.TrajectoryPoint
}

// Generator produces random-walk trajectories for a single tag.
type Generator struct {
	opts       GenerateOptions
	fileClient file.FileOperations
	rng        *rand.Rand
	logger     zerolog.Logger
}

// NewGenerator creates a Generator. rng may be nil to use a randomly seeded generator.
func NewGenerator(opts GenerateOptions, fileClient file.FileOperations, rng *rand.Rand, logger zerolog.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = randwalk.NewRand(0)
	}
	return &Generator{
		opts:       opts,
		fileClient: fileClient,
		rng:        rng,
		logger:     logger,
	}, nil
}

// Generate builds NumPoints points starting at start, one Interval apart.
func (g *Generator) Generate(ctx context.Context, start time.Time) ([]models.TrajectoryPoint, error) {
	tagMAC := g.opts.TagMAC
	if tagMAC == "" {
		tagMAC = randwalk.RandomMAC(g.rng)
	}

	g.logger.Info().
		Str("tag_mac", tagMAC).
		Int("points", g.opts.NumPoints).
		Dur("interval", g.opts.Interval).
		Floats64("x_range", []float64{g.opts.XRange.Min, g.opts.XRange.Max}).
		Floats64("y_range", []float64{g.opts.YRange.Min, g.opts.YRange.Max}).
		Msg("Generating trajectory")

	walker := randwalk.NewBoundedWalker(g.opts.XRange, g.opts.YRange, g.opts.Step, g.rng)
	points := make([]models.TrajectoryPoint, 0, g.opts.NumPoints)

	for i := 0; i < g.opts.NumPoints; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		x, y := walker.Next()
		points = append(points, models.TrajectoryPoint{
			TagMAC:    tagMAC,
			Timestamp: models.NewEpochTimestamp(start.Add(time.Duration(i) * g.opts.Interval)),
			X:         randwalk.Round(x, coordinateDecimals),
			Y:         randwalk.Round(y, coordinateDecimals),
			RSSI:      randwalk.IntBetween(g.rng, g.opts.RSSIMin, g.opts.RSSIMax),
			Battery:   randwalk.IntBetween(g.rng, g.opts.BatteryMin, g.opts.BatteryMax),
			MapID:     g.opts.MapID,
		})

		if (i+1)%progressEvery == 0 {
			g.logger.Info().Msgf("Generated %d/%d points", i+1, g.opts.NumPoints)
		}
	}

	return points, nil
}

// FileName returns the output file name for a generation run started at now.
func FileName(now time.Time) string {
	return generatedFilePrefix + now.Format(generatedFileLayout) + ".json"
}

// Save writes points to a timestamped file in dir and returns its path.
func (g *Generator) Save(points []models.TrajectoryPoint, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, FileName(now))
	if err := g.fileClient.WriteJsonFile(path, points); err != nil {
		return "", fmt.Errorf("failed to save trajectory to %s: %w", path, err)
	}

	g.logger.Info().Str("file", path).Msg("Trajectory saved")
	return path, nil
}

// Summarize reports the tag, size and time span of a generated trajectory.
// Start and End are in local time.
func Summarize(points []models.TrajectoryPoint) (TrajectorySummary, error) {
	if len(points) == 0 {
		return TrajectorySummary{}, errors.New("empty trajectory")
	}

	start, err := points[0].Timestamp.Time()
	if err != nil {
		return TrajectorySummary{}, fmt.Errorf("first point: %w", err)
	}
	end, err := points[len(points)-1].Timestamp.Time()
	if err != nil {
		return TrajectorySummary{}, fmt.Errorf("last point: %w", err)
	}

	return TrajectorySummary{
		TagMAC:  points[0].TagMAC,
		Count:   len(points),
		Start:   start.Local(),
		End:     end.Local(),
		Span:    end.Sub(start),
		Samples: points[:min(3, len(points))],
	}, nil
}
