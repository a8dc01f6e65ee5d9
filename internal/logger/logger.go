package logger

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *slog.Logger

// Options controls where and how the client logs.
type Options struct {
	// FilePath enables rotated JSON file logging when non-empty.
	FilePath string
	Level    slog.Level
}

// Init installs the package logger. Without a file path it logs structured
// text to stderr, which suits library use; with one it writes rotated JSON
// files.
func Init(opts Options) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.FilePath == "" {
		Log = slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
		slog.SetDefault(Log)
		return
	}

	_ = os.MkdirAll(filepath.Dir(opts.FilePath), 0755)

	fileWriter := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	Log = slog.New(slog.NewJSONHandler(fileWriter, handlerOpts))
	slog.SetDefault(Log)
}

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

func logger() *slog.Logger {
	if Log != nil {
		return Log
	}
	return slog.Default()
}
