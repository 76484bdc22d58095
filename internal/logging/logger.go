package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures InitLogger's output beyond the zap defaults.
type Option func(*settings)

type settings struct {
	dir          string
	consoleLevel zapcore.Level
	fileLevel    zapcore.Level
}

// WithLogDir overrides the directory a run's log file is written under.
// Defaults to "logs".
func WithLogDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

// WithConsoleLevel raises or lowers the stdout core's minimum level.
// Defaults to zapcore.InfoLevel.
func WithConsoleLevel(level zapcore.Level) Option {
	return func(s *settings) { s.consoleLevel = level }
}

// InitLogger builds a zap.Logger that writes human-readable lines to
// stdout and structured JSON lines to a per-run file under logs/, tagged
// with runID so a log can be traced back to the audit row and notification
// fileId it corresponds to. The file core always runs at debug level so
// every pipeline stage's structured fields land somewhere, even when the
// console is kept at info.
func InitLogger(runID string, opts ...Option) (*zap.Logger, error) {
	s := settings{
		dir:          "logs",
		consoleLevel: zapcore.InfoLevel,
		fileLevel:    zapcore.DebugLevel,
	}
	for _, opt := range opts {
		opt(&s)
	}

	logFile, err := openRunLogFile(s.dir, runID)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewTee(
		consoleCore(s.consoleLevel),
		fileCore(logFile, s.fileLevel),
	)

	base := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return base.With(zap.String("run_id", runID)), nil
}

func openRunLogFile(dir, runID string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}

	name := fmt.Sprintf("%s_%s.log", runID, time.Now().Format("2006-01-02_15-04-05"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", name, err)
	}
	return f, nil
}

// consoleCore renders colorized, human-scannable lines for an operator
// watching the run interactively.
func consoleCore(level zapcore.Level) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stdout), level)
}

// fileCore renders one JSON object per line, suitable for later ingestion
// by log aggregation rather than human reading.
func fileCore(w *os.File, level zapcore.Level) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), level)
}
