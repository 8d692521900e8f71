package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	once     sync.Once
	instance = zerolog.Nop()
)

// Options controls where log output goes
type Options struct {
	Debug bool
	// File is the path of the rotated log file. Empty means console only.
	File string
	// MaxSizeMB and MaxAgeDays bound the rotated files kept on disk.
	MaxSizeMB  int
	MaxAgeDays int
}

// InitLogger initializes the logger with console output and, when a file is configured, a rotating file
func InitLogger(opts Options) zerolog.Logger {
	once.Do(func() {
		instance = build(opts, os.Stderr)
	})

	instance.Debug().Bool("debug_mode", opts.Debug).Str("file", opts.File).Msg("Logger initialized")
	return instance
}

func build(opts Options, console io.Writer) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}

	var out io.Writer = consoleWriter
	if opts.File != "" {
		if opts.MaxSizeMB <= 0 {
			opts.MaxSizeMB = 10
		}
		if opts.MaxAgeDays <= 0 {
			opts.MaxAgeDays = 15
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxAge:     opts.MaxAgeDays,
			MaxBackups: 5,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(consoleWriter, rotator)
	}

	level := zerolog.InfoLevel
	ctx := zerolog.New(out).With().Timestamp()
	if opts.Debug {
		level = zerolog.DebugLevel
		// Include file and line number
		ctx = ctx.Caller()
	}
	return ctx.Logger().Level(level)
}

// GetLogger returns the logger instance. Before InitLogger it is a no-op logger.
func GetLogger() zerolog.Logger {
	return instance
}

// Helper functions for consistent logging
func Info() *zerolog.Event {
	return instance.Info()
}

func Error() *zerolog.Event {
	return instance.Error()
}

func Debug() *zerolog.Event {
	return instance.Debug()
}

func Warn() *zerolog.Event {
	return instance.Warn()
}

func Fatal() *zerolog.Event {
	return instance.Fatal()
}
