package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benmeehan/trajsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_PreservesRepresentation(t *testing.T) {
	input := `[{"tag_mac":"A","timestamp":"1700000000.250000","x":1,"y":2,"rssi":-60,"battery":90,"map_id":1},` +
		`{"tag_mac":"B","timestamp":1700000001.5,"x":3,"y":4,"rssi":-61,"battery":91,"map_id":1}]`

	var points []models.TrajectoryPoint
	require.NoError(t, json.Unmarshal([]byte(input), &points))
	require.Len(t, points, 2)

	assert.False(t, points[0].Timestamp.IsNumeric())
	assert.True(t, points[1].Timestamp.IsNumeric())

	out, err := json.Marshal(points)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
	assert.Contains(t, string(out), `"timestamp":"1700000000.250000"`)
	assert.Contains(t, string(out), `"timestamp":1700000001.5`)
}

func TestTimestamp_RejectsObjects(t *testing.T) {
	var ts models.Timestamp
	err := json.Unmarshal([]byte(`{"sec":1}`), &ts)
	assert.ErrorIs(t, err, models.ErrInvalidTimestamp)

	_, err = models.NewRawTimestamp([]byte(`true`))
	assert.ErrorIs(t, err, models.ErrInvalidTimestamp)
}

func TestTimestamp_Time(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "epoch string with fraction", raw: `"1700000000.500000"`, want: time.Unix(1700000000, 500000000).UTC()},
		{name: "epoch number", raw: `1700000000`, want: time.Unix(1700000000, 0).UTC()},
		{name: "wall clock", raw: `"2024-03-01 12:30:00"`, want: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := models.NewRawTimestamp([]byte(tt.raw))
			require.NoError(t, err)

			got, err := ts.Time()
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	bad, err := models.NewRawTimestamp([]byte(`"yesterday"`))
	require.NoError(t, err)
	_, err = bad.Time()
	assert.Error(t, err)
}

func TestNewEpochTimestamp(t *testing.T) {
	ts := models.NewEpochTimestamp(time.Unix(1700000000, 123456789))

	assert.Equal(t, "1700000000.123456", ts.String())
	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"1700000000.123456"`, string(raw))
}
