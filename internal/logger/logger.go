// Package logger provides logging for the plancheck CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the retrieval pipeline.
// A rotating log file can be configured independently and always
// records info level and above.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu       sync.RWMutex
	verbose  bool
	output   io.Writer = os.Stderr
	fileSink *lumberjack.Logger
	log      = zap.NewNop()
)

// FileConfig configures the rotating log file.
type FileConfig struct {
	// Path is the log file. Empty disables file logging.
	Path string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// ConfigureFile enables, changes or (with an empty path) disables the log file.
func ConfigureFile(cfg FileConfig) error {
	mu.Lock()
	defer mu.Unlock()

	if fileSink != nil {
		_ = fileSink.Close()
		fileSink = nil
	}
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			rebuild()
			return fmt.Errorf("create log directory: %w", err)
		}
		fileSink = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
	}
	rebuild()
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	_ = log.Sync()
	if fileSink == nil {
		return nil
	}
	err := fileSink.Close()
	fileSink = nil
	rebuild()
	return err
}

// rebuild recreates the zap logger from the current settings. Callers hold mu.
func rebuild() {
	var cores []zapcore.Core
	if verbose && output != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(output)),
			zapcore.DebugLevel,
		))
	}
	if fileSink != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(fileSink),
			zapcore.InfoLevel,
		))
	}
	log = zap.New(zapcore.NewTee(cores...))
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      bracketLevelEncoder,
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
	}
}

// bracketLevelEncoder renders levels as "[DEBUG]", "[INFO]", "[WARN]".
func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

func write(level zapcore.Level, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if ce := log.Check(level, ""); ce != nil {
		ce.Message = fmt.Sprintf(format, args...)
		ce.Write()
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(zapcore.DebugLevel, format, args)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled
// and records it in the log file.
func Info(format string, args ...any) {
	write(zapcore.InfoLevel, format, args)
}

// Warn prints a warning message if verbose mode is enabled
// and records it in the log file.
func Warn(format string, args ...any) {
	write(zapcore.WarnLevel, format, args)
}

// Error prints an error message if verbose mode is enabled
// and records it in the log file.
func Error(format string, args ...any) {
	write(zapcore.ErrorLevel, format, args)
}
