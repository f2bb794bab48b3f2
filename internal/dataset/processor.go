package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/benmeehan/trajsim/internal/models"
	"github.com/benmeehan/trajsim/pkg/file"
	"github.com/benmeehan/trajsim/pkg/randwalk"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrNotArray is returned when the input is not a JSON array.
	ErrNotArray = errors.New("input must be a JSON array of records")
	// ErrMissingField is returned when a record lacks one of the copied fields.
	ErrMissingField = errors.New("record is missing a required field")
	// ErrInvalidField is returned when a copied field has the wrong JSON type.
	ErrInvalidField = errors.New("record field has an invalid type")
)

// ProcessOptions controls the values injected into every output record.
type ProcessOptions struct {
	RSSIMin, RSSIMax       int
	BatteryMin, BatteryMax int
	MapID                  int
}

// ProcessSummary describes one completed transform.
type ProcessSummary struct {
	InputFile   string
	OutputFile  string
	InputCount  int
	OutputCount int
}

// Processor reduces raw trajectory records to the ingest shape and injects
// simulated signal strength, battery level and map id.
type Processor struct {
	opts       ProcessOptions
	fileClient file.FileOperations
	rng        *rand.Rand
	logger     zerolog.Logger
}

// NewProcessor creates a Processor. rng may be nil to use a randomly seeded generator.
func NewProcessor(opts ProcessOptions, fileClient file.FileOperations, rng *rand.Rand, logger zerolog.Logger) *Processor {
	if rng == nil {
		rng = randwalk.NewRand(0)
	}
	return &Processor{
		opts:       opts,
		fileClient: fileClient,
		rng:        rng,
		logger:     logger,
	}
}

// Process reads input, transforms every record and writes the result to output.
func (p *Processor) Process(ctx context.Context, input, output string) (ProcessSummary, error) {
	summary := ProcessSummary{InputFile: input, OutputFile: output}

	exists, err := p.fileClient.IsFileExists(input)
	if err != nil {
		return summary, fmt.Errorf("failed to stat %s: %w", input, err)
	}
	if !exists {
		return summary, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}

	data, err := p.fileClient.ReadFileRaw(input)
	if err != nil {
		return summary, fmt.Errorf("failed to read %s: %w", input, err)
	}

	points, err := p.Transform(ctx, data)
	if err != nil {
		return summary, fmt.Errorf("failed to transform %s: %w", input, err)
	}
	summary.InputCount = len(points)

	if err := p.fileClient.WriteJsonFile(output, points); err != nil {
		return summary, fmt.Errorf("failed to write %s: %w", output, err)
	}
	summary.OutputCount = len(points)

	p.logger.Info().
		Str("input", input).
		Str("output", output).
		Int("records", summary.OutputCount).
		Msg("Trajectory file processed")
	return summary, nil
}

// Transform maps every record of a raw JSON array to a TrajectoryPoint.
// Only tag_mac, timestamp, x and y are copied; any other field is dropped.
func (p *Processor) Transform(ctx context.Context, data []byte) ([]models.TrajectoryPoint, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrNotArray
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	records := root.Array()
	points := make([]models.TrajectoryPoint, 0, len(records))

	for i, record := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		point, err := p.transformRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		points = append(points, point)
	}

	return points, nil
}

func (p *Processor) transformRecord(record gjson.Result) (models.TrajectoryPoint, error) {
	names := []string{"tag_mac", "timestamp", "x", "y"}
	fields := make([]gjson.Result, len(names))
	for i, name := range names {
		fields[i] = record.Get(name)
		if !fields[i].Exists() {
			return models.TrajectoryPoint{}, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	if fields[0].Type != gjson.String {
		return models.TrajectoryPoint{}, fmt.Errorf("%w: tag_mac must be a string, got %s", ErrInvalidField, fields[0].Raw)
	}
	for i, name := range names[2:] {
		if f := fields[i+2]; f.Type != gjson.Number {
			return models.TrajectoryPoint{}, fmt.Errorf("%w: %s must be a number, got %s", ErrInvalidField, name, f.Raw)
		}
	}

	ts, err := models.NewRawTimestamp([]byte(fields[1].Raw))
	if err != nil {
		return models.TrajectoryPoint{}, fmt.Errorf("%w: timestamp: %v", ErrInvalidField, err)
	}

	return models.TrajectoryPoint{
		TagMAC:    fields[0].String(),
		Timestamp: ts,
		X:         fields[2].Float(),
		Y:         fields[3].Float(),
		RSSI:      randwalk.IntBetween(p.rng, p.opts.RSSIMin, p.opts.RSSIMax),
		Battery:   randwalk.IntBetween(p.rng, p.opts.BatteryMin, p.opts.BatteryMax),
		MapID:     p.opts.MapID,
	}, nil
}
