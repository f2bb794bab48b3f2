package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger from the logging section of the configuration.
// Console output is colorized by level unless disabled; an optional file sink rotates
// through lumberjack and always receives JSON lines.
func NewLogger(config *Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil || config.Logging.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = out
	if config.Logging.Format != "json" {
		console = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.DateTime,
			NoColor:    config.Logging.NoColor,
		}
	}

	writer := console
	if config.Logging.File != "" {
		writer = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   config.Logging.File,
			MaxSize:    config.Logging.MaxSizeMB,
			MaxBackups: config.Logging.MaxBackups,
			MaxAge:     config.Logging.MaxAgeDays,
		})
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
