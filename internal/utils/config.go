package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/benmeehan/trajsim/pkg/file"
)

// Transports supported by the single-point streamer.
const (
	TransportHTTP = "http"
	TransportMQTT = "mqtt"
)

// IntRange is an inclusive [Min, Max] integer range.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is an inclusive [Min, Max] coordinate range.
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config represents the structure of the configuration file.
type Config struct {
	Logging struct {
		Level      string `yaml:"level"`        // zerolog level name
		Format     string `yaml:"format"`       // "console" or "json"
		NoColor    bool   `yaml:"no_color"`     // Disable console colors
		File       string `yaml:"file"`         // Optional rotating log file
		MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this many megabytes
		MaxBackups int    `yaml:"max_backups"`  // Rotated files to keep
		MaxAgeDays int    `yaml:"max_age_days"` // Days to keep rotated files
	} `yaml:"logging"`

	Ingest struct {
		BaseURL       string        `yaml:"base_url"`       // Tracking API root, e.g. http://localhost:8080
		BatchPath     string        `yaml:"batch_path"`     // Batch ingest endpoint
		StatusPath    string        `yaml:"status_path"`    // Liveness endpoint
		StatusTimeout time.Duration `yaml:"status_timeout"` // Timeout of one liveness check
		SendTimeout   time.Duration `yaml:"send_timeout"`   // Timeout of one batch POST
	} `yaml:"ingest"`

	MQTT struct {
		Broker         string        `yaml:"broker"`          // MQTT broker address
		ClientID       string        `yaml:"client_id"`       // MQTT client ID prefix
		CACertificate  string        `yaml:"ca_certificate"`  // Optional CA certificate, enables TLS
		Topic          string        `yaml:"topic"`           // Topic the streamer publishes to
		QOS            int           `yaml:"qos"`             // MQTT QoS level
		ConnectTimeout time.Duration `yaml:"connect_timeout"` // Max wait for the broker connection
		PublishTimeout time.Duration `yaml:"publish_timeout"` // Max wait for a publish acknowledgement, 0 waits forever
	} `yaml:"mqtt"`

	Services struct {
		Process struct {
			InputFile  string   `yaml:"input_file"`  // Raw trajectory file
			OutputFile string   `yaml:"output_file"` // Reduced trajectory file
			RSSI       IntRange `yaml:"rssi"`        // Injected signal strength range
			Battery    IntRange `yaml:"battery"`     // Injected battery range
			MapID      int      `yaml:"map_id"`      // Fixed map identifier
		} `yaml:"process"`

		Generate struct {
			OutputDir string        `yaml:"output_dir"` // Directory receiving generated files
			NumPoints int           `yaml:"num_points"` // Points per file
			Interval  time.Duration `yaml:"interval"`   // Time between consecutive points
			TagMAC    string        `yaml:"tag_mac"`    // Fixed tag MAC, random when empty
			XRange    FloatRange    `yaml:"x_range"`    // Clamp range for x
			YRange    FloatRange    `yaml:"y_range"`    // Clamp range for y
			Step      float64       `yaml:"step"`       // Max move per point on each axis
			RSSI      IntRange      `yaml:"rssi"`       // Signal strength range
			Battery   IntRange      `yaml:"battery"`    // Battery range
			MapID     int           `yaml:"map_id"`     // Fixed map identifier
		} `yaml:"generate"`

		Stream struct {
			Enabled   bool          `yaml:"enabled"`   // Enable/disable the streamer under `run`
			Transport string        `yaml:"transport"` // "http" or "mqtt"
			TagMAC    string        `yaml:"tag_mac"`   // MAC of the simulated tag
			Interval  time.Duration `yaml:"interval"`  // Time between points
			Delta     float64       `yaml:"delta"`     // Max move per point on each axis
			Precision int           `yaml:"precision"` // Decimals kept for x and y
		} `yaml:"stream"`

		Replay struct {
			Enabled      bool          `yaml:"enabled"`        // Enable/disable replay under `run`
			DataDir      string        `yaml:"data_dir"`       // Directory holding trajectory files
			Files        []string      `yaml:"files"`          // Files to replay, relative to DataDir
			AllFiles     bool          `yaml:"all_files"`      // Replay every *.json file in DataDir
			BatchSize    int           `yaml:"batch_size"`     // Points per POST
			Interval     time.Duration `yaml:"interval"`       // Pacing between batches
			RetryDelay   time.Duration `yaml:"retry_delay"`    // Wait after a failed liveness check
			CheckOnStart bool          `yaml:"check_on_start"` // Refuse to start when the API is down
		} `yaml:"replay"`
	} `yaml:"services"`
}

// DefaultConfig returns the configuration used when no file or key overrides it.
func DefaultConfig() *Config {
	var c Config

	c.Logging.Level = "info"
	c.Logging.Format = "console"
	c.Logging.MaxSizeMB = 10
	c.Logging.MaxBackups = 3
	c.Logging.MaxAgeDays = 7

	c.Ingest.BaseURL = "http://localhost:8080"
	c.Ingest.BatchPath = "/api/realtime/paths/batch"
	c.Ingest.StatusPath = "/api/realtime/devices"
	c.Ingest.StatusTimeout = 5 * time.Second
	c.Ingest.SendTimeout = 10 * time.Second

	c.MQTT.Broker = "tcp://localhost:1883"
	c.MQTT.ClientID = "trajsim"
	c.MQTT.Topic = "realtime/paths/batch"
	c.MQTT.QOS = 1
	c.MQTT.ConnectTimeout = 10 * time.Second
	c.MQTT.PublishTimeout = 5 * time.Second

	p := &c.Services.Process
	p.InputFile = "src/main/resources/data/trajectory.json"
	p.OutputFile = "src/main/resources/data/trajectory_processed.json"
	p.RSSI = IntRange{Min: -80, Max: -50}
	p.Battery = IntRange{Min: 80, Max: 100}
	p.MapID = 1

	g := &c.Services.Generate
	g.OutputDir = "src/main/resources/data"
	g.NumPoints = 100
	g.Interval = time.Minute
	g.XRange = FloatRange{Min: -3, Max: 3}
	g.YRange = FloatRange{Min: -3, Max: 3}
	g.Step = 0.1
	g.RSSI = IntRange{Min: -90, Max: -50}
	g.Battery = IntRange{Min: 70, Max: 100}
	g.MapID = 1

	s := &c.Services.Stream
	s.Transport = TransportHTTP
	s.TagMAC = "84FD27EEE605"
	s.Interval = time.Second
	s.Delta = 0.1
	s.Precision = 6

	r := &c.Services.Replay
	r.DataDir = "src/main/resources/data"
	r.Files = []string{"test.json"}
	r.BatchSize = 20
	r.Interval = 100 * time.Millisecond
	r.RetryDelay = 5 * time.Second
	r.CheckOnStart = true

	return &c
}

// LoadConfig loads the YAML configuration from the specified file on top of DefaultConfig.
// Keys absent from the file keep their default values.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()
	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values every tool relies on.
func (c *Config) Validate() error {
	var errs []error

	if c.Ingest.BaseURL == "" {
		errs = append(errs, errors.New("ingest.base_url must be set"))
	}
	if c.Ingest.StatusTimeout <= 0 || c.Ingest.SendTimeout <= 0 {
		errs = append(errs, errors.New("ingest timeouts must be positive"))
	}

	p := c.Services.Process
	if p.RSSI.Min > p.RSSI.Max || p.Battery.Min > p.Battery.Max {
		errs = append(errs, errors.New("services.process ranges must have min <= max"))
	}

	g := c.Services.Generate
	if g.NumPoints < 1 {
		errs = append(errs, fmt.Errorf("services.generate.num_points must be >= 1, got %d", g.NumPoints))
	}
	if g.XRange.Min > g.XRange.Max || g.YRange.Min > g.YRange.Max ||
		g.RSSI.Min > g.RSSI.Max || g.Battery.Min > g.Battery.Max {
		errs = append(errs, errors.New("services.generate ranges must have min <= max"))
	}
	if g.Step < 0 {
		errs = append(errs, errors.New("services.generate.step must not be negative"))
	}

	s := c.Services.Stream
	if s.Transport != TransportHTTP && s.Transport != TransportMQTT {
		errs = append(errs, fmt.Errorf("services.stream.transport must be %q or %q, got %q", TransportHTTP, TransportMQTT, s.Transport))
	}
	if s.Interval <= 0 {
		errs = append(errs, errors.New("services.stream.interval must be positive"))
	}
	if s.Transport == TransportMQTT && (c.MQTT.Broker == "" || c.MQTT.Topic == "") {
		errs = append(errs, errors.New("mqtt.broker and mqtt.topic must be set for the mqtt transport"))
	}
	if s.Transport == TransportMQTT && c.MQTT.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("mqtt.connect_timeout must be positive for the mqtt transport"))
	}

	r := c.Services.Replay
	if r.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("services.replay.batch_size must be >= 1, got %d", r.BatchSize))
	}
	if r.Interval < 0 || r.RetryDelay < 0 {
		errs = append(errs, errors.New("services.replay delays must not be negative"))
	}

	return errors.Join(errs...)
}
