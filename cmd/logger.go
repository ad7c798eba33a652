package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 100
	logFileMaxBackups = 3
)

// newLogger writes to stderr and, when cfg.LogFile is set, to a rotated file.
// The returned func closes the file.
func newLogger(cfg *Config, stderr io.Writer) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var out io.Writer = stderr
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	}

	closeFn := func() error { return nil }
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closeFn = file.Close
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	return logger, closeFn, nil
}
