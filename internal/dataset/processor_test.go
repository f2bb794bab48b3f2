package dataset_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/benmeehan/trajsim/internal/dataset"
	"github.com/benmeehan/trajsim/internal/mocks"
	"github.com/benmeehan/trajsim/pkg/file"
	"github.com/benmeehan/trajsim/pkg/randwalk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var defaultProcessOptions = dataset.ProcessOptions{
	RSSIMin: -80, RSSIMax: -50,
	BatteryMin: 80, BatteryMax: 100,
	MapID: 1,
}

func newProcessor(fileClient file.FileOperations) *dataset.Processor {
	return dataset.NewProcessor(defaultProcessOptions, fileClient, randwalk.NewRand(11), zerolog.Nop())
}

func TestProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "trajectory.json")
	output := filepath.Join(dir, "out", "trajectory_processed.json")

	raw := `[
  {"tag_mac": "84FD27EEE605", "timestamp": "1700000000.000000", "x": 1.5, "y": -2.25, "z": 0.9, "stdev": 0.12},
  {"tag_mac": "84FD27EEE605", "timestamp": 1700000060, "x": 1.6, "y": -2.2, "z": 1.0, "stdev": {"x": 0.1, "y": 0.2}}
]`
	require.NoError(t, os.WriteFile(input, []byte(raw), 0600))

	summary, err := newProcessor(file.NewFileService()).Process(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.InputCount)
	assert.Equal(t, 2, summary.OutputCount)
	assert.Equal(t, output, summary.OutputFile)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	for _, record := range records {
		assert.NotContains(t, record, "stdev")
		assert.NotContains(t, record, "z")
		assert.Len(t, record, 7)

		rssi := record["rssi"].(float64)
		assert.GreaterOrEqual(t, rssi, -80.0)
		assert.LessOrEqual(t, rssi, -50.0)

		battery := record["battery"].(float64)
		assert.GreaterOrEqual(t, battery, 80.0)
		assert.LessOrEqual(t, battery, 100.0)

		assert.Equal(t, 1.0, record["map_id"])
	}

	assert.Equal(t, "1700000000.000000", records[0]["timestamp"])
	assert.Equal(t, 1700000060.0, records[1]["timestamp"])
	assert.Equal(t, 1.5, records[0]["x"])
	assert.Equal(t, -2.25, records[0]["y"])
	assert.Contains(t, string(data), `"timestamp": 1700000060`)
}

func TestProcessor_EmptyArray(t *testing.T) {
	points, err := newProcessor(nil).Transform(context.Background(), []byte(`[]`))

	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestProcessor_RejectsNonArray(t *testing.T) {
	p := newProcessor(nil)

	_, err := p.Transform(context.Background(), []byte(`{"tag_mac": "x"}`))
	assert.ErrorIs(t, err, dataset.ErrNotArray)

	_, err = p.Transform(context.Background(), []byte(`[{`))
	assert.ErrorIs(t, err, dataset.ErrNotArray)
}

func TestProcessor_MissingField(t *testing.T) {
	_, err := newProcessor(nil).Transform(context.Background(),
		[]byte(`[{"tag_mac":"A","timestamp":"1","x":1,"y":2},{"tag_mac":"A","timestamp":"2","x":1}]`))

	assert.ErrorIs(t, err, dataset.ErrMissingField)
	assert.ErrorContains(t, err, "record 1")
	assert.ErrorContains(t, err, "y")
}

func TestProcessor_InvalidFieldTypes(t *testing.T) {
	tests := []struct {
		name   string
		record string
		field  string
	}{
		{"numeric tag", `{"tag_mac":123,"timestamp":"1","x":1.5,"y":2}`, "tag_mac"},
		{"string x", `{"tag_mac":"A","timestamp":"1","x":"1.5","y":2}`, "x"},
		{"non-numeric y", `{"tag_mac":"A","timestamp":"1","x":1.5,"y":"abc"}`, "y"},
		{"null x", `{"tag_mac":"A","timestamp":"1","x":null,"y":2}`, "x"},
		{"boolean y", `{"tag_mac":"A","timestamp":"1","x":1.5,"y":true}`, "y"},
		{"object timestamp", `{"tag_mac":"A","timestamp":{"s":1},"x":1.5,"y":2}`, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `[{"tag_mac":"A","timestamp":"1","x":0,"y":0},` + tt.record + `]`
			points, err := newProcessor(nil).Transform(context.Background(), []byte(data))

			assert.Nil(t, points)
			assert.ErrorIs(t, err, dataset.ErrInvalidField)
			assert.ErrorContains(t, err, "record 1")
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestProcessor_InputNotFound(t *testing.T) {
	fileClient := new(mocks.MockFileOperations)
	fileClient.On("IsFileExists", "missing.json").Return(false, nil)

	_, err := newProcessor(fileClient).Process(context.Background(), "missing.json", "out.json")

	assert.ErrorIs(t, err, dataset.ErrInputNotFound)
	fileClient.AssertNotCalled(t, "WriteJsonFile")
}

func TestProcessor_WriteFailure(t *testing.T) {
	fileClient := new(mocks.MockFileOperations)
	fileClient.On("IsFileExists", "in.json").Return(true, nil)
	fileClient.On("ReadFileRaw", "in.json").Return([]byte(`[{"tag_mac":"A","timestamp":"1","x":1,"y":2}]`), nil)
	fileClient.On("WriteJsonFile", "out.json", mock.Anything).Return(errors.New("disk full"))

	summary, err := newProcessor(fileClient).Process(context.Background(), "in.json", "out.json")

	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, summary.InputCount)
	assert.Equal(t, 0, summary.OutputCount)
	fileClient.AssertExpectations(t)
}
