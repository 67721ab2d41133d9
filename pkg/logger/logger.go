// Package logger provides opinionated logging capabilities for the intake system
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the operator-facing console logger. It writes to stderr
// so log lines never interleave with the patient conversation on stdout.
func NewLogger(debug bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// Set log level
	level := zap.WarnLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// FileLogger is an append-only JSON debug log backed by a single file.
type FileLogger struct {
	*zap.Logger
	file *os.File
}

// NewFileLogger opens (creating if needed) the debug log at path and returns
// a debug-level JSON logger writing to it.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create debug log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open debug log %s: %w", path, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(f),
		zap.DebugLevel,
	)

	return &FileLogger{
		Logger: zap.New(core),
		file:   f,
	}, nil
}

// Close flushes buffered entries and closes the underlying file.
func (l *FileLogger) Close() error {
	_ = l.Logger.Sync()
	return l.file.Close()
}
