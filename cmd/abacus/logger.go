package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/mwhitford/abacus/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLoggerResult holds the pieces of a file-backed logger setup.
type FileLoggerResult struct {
	Logger   *slog.Logger
	LogFile  io.WriteCloser
	FilePath string
}

// Close closes the log file if it was opened.
func (r *FileLoggerResult) Close() error {
	if r.LogFile != nil {
		return r.LogFile.Close()
	}
	return nil
}

// SetupFileLogger creates a logger that writes to a rotating file instead of
// stderr. The dashboard and the MCP server both own their terminal streams,
// so logs have to go elsewhere. Uses lumberjack for rotation.
func SetupFileLogger(logDir string, level slog.Leveler, rotationCfg config.LogRotationConfig) (*FileLoggerResult, error) {
	debugLogPath := filepath.Join(logDir, "abacus-debug.log")

	debugLogWriter := &lumberjack.Logger{
		Filename:   debugLogPath,
		MaxSize:    rotationCfg.MaxSizeMB,
		MaxBackups: rotationCfg.MaxBackups,
		MaxAge:     rotationCfg.MaxAgeDays,
		Compress:   rotationCfg.Compress,
	}

	logger := slog.New(slog.NewJSONHandler(debugLogWriter, &slog.HandlerOptions{Level: level}))

	return &FileLoggerResult{
		Logger:   logger,
		LogFile:  debugLogWriter,
		FilePath: debugLogPath,
	}, nil
}

// SetupFileLoggerWithWriter creates a logger that writes to the given writer.
// This is useful for testing where we want to capture the output.
func SetupFileLoggerWithWriter(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
