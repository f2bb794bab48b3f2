package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WallClockLayout is the timestamp layout used by the single-point streamer.
const WallClockLayout = "2006-01-02 15:04:05"

// TrajectoryPoint is one timestamped (x, y) sample for a tracked tag.
type TrajectoryPoint struct {
	TagMAC    string    `json:"tag_mac"`
	Timestamp Timestamp `json:"timestamp"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	RSSI      int       `json:"rssi"`
	Battery   int       `json:"battery"`
	MapID     int       `json:"map_id"`
}

// StreamPoint is the reduced record posted by the single-point streamer.
type StreamPoint struct {
	Mac       string  `json:"mac"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp string  `json:"timestamp"`
}

// ErrInvalidTimestamp is returned when a timestamp token is neither a string nor a number.
var ErrInvalidTimestamp = errors.New("timestamp must be a JSON string or number")

// Timestamp keeps the raw JSON token of a trajectory timestamp so that records
// copied from one file to another keep their original representation.
type Timestamp struct {
	raw json.RawMessage
}

// NewEpochTimestamp formats t as epoch seconds with microsecond precision, encoded as a JSON string.
func NewEpochTimestamp(t time.Time) Timestamp {
	s := fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
	return Timestamp{raw: json.RawMessage(strconv.Quote(s))}
}

// NewRawTimestamp wraps a raw JSON token. Only strings and numbers are accepted.
func NewRawTimestamp(raw []byte) (Timestamp, error) {
	var ts Timestamp
	if err := ts.UnmarshalJSON(raw); err != nil {
		return Timestamp{}, err
	}
	return ts, nil
}

// IsZero reports whether the timestamp holds no value.
func (t Timestamp) IsZero() bool {
	return len(t.raw) == 0
}

// IsNumeric reports whether the timestamp was encoded as a JSON number.
func (t Timestamp) IsNumeric() bool {
	return len(t.raw) > 0 && t.raw[0] != '"'
}

// String returns the timestamp text without JSON quoting.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	if t.IsNumeric() {
		return string(t.raw)
	}
	var s string
	if err := json.Unmarshal(t.raw, &s); err != nil {
		return string(t.raw)
	}
	return s
}

// Time interprets the timestamp as epoch seconds (string or number, fraction allowed)
// or as a wall clock string in WallClockLayout (UTC).
func (t Timestamp) Time() (time.Time, error) {
	s := strings.TrimSpace(t.String())
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return time.Time{}, fmt.Errorf("invalid epoch timestamp %q", s)
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond)).UTC(), nil
	}

	parsed, err := time.Parse(WallClockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", s, err)
	}
	return parsed, nil
}

// MarshalJSON writes the original token back unchanged.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.raw, nil
}

// UnmarshalJSON accepts a JSON string or number token.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		t.raw = nil
		return nil
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
	default:
		return ErrInvalidTimestamp
	}

	t.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}
