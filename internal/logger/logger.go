// Package logger provides a structured, module-aware logging system built on Go's standard log/slog.
//
// # Quick Start
//
//	cfg := &logger.LoggingConfig{
//	    DefaultLevel: "info",
//	    Console: &logger.ConsoleOutput{
//	        Enabled: true,
//	        Level:   "info",
//	    },
//	}
//
//	centralLogger, err := logger.NewCentralLogger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer centralLogger.Close()
//
//	flowLogger := centralLogger.Module("registration")
//	flowLogger.Info("code registered",
//	    logger.String("code", code),
//	    logger.Bool("duplicate", false))
//
// # Module Scoping
//
// Loggers nest; the module attribute is joined with dots:
//
//	storeLogger := centralLogger.Module("datastore")
//	sqlLogger := storeLogger.Module("sqlite") // module="datastore.sqlite"
//
// # Context-Aware Logging
//
// Trace IDs set with WithTraceID are picked up by WithContext:
//
//	ctx = logger.WithTraceID(ctx, uuid.NewString())
//	flowLogger.WithContext(ctx).Info("submit started")
//
// # Testing
//
// Use a buffer or discard logger:
//
//	buf := &bytes.Buffer{}
//	testLogger := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)
//
//	silent := logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)
//
// # Configuration
//
//	logging:
//	  default_level: "info"
//	  timezone: "UTC"
//	  console:
//	    enabled: true
//	    level: "info"
//	  file_output:
//	    enabled: false
//	    path: "logs/qrregister.log"
//	    level: "debug"
//	  module_levels:
//	    datastore: "trace"
//
// Console output is human-readable text without timestamps. File output is
// JSON with RFC3339 timestamps.
package logger

import (
	"context"
	"log/slog"
	"time"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Field is a structured log attribute.
type Field struct {
	Key   string
	Value any
}

func (f Field) attr() slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case bool:
		return slog.Bool(f.Key, v)
	default:
		return slog.Any(f.Key, v)
	}
}

const (
	errorKey   = "error"
	moduleKey  = "module"
	traceIDKey = "trace_id"
)

// Logger is the centralized logging interface for dependency injection
type Logger interface {
	// Module returns a logger scoped to a specific module
	Module(name string) Logger

	// Leveled logging methods
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Context-aware logging
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	// Flush ensures all buffered logs are written
	Flush() error
}

// String creates a string field for structured logging.
//
// Example:
//
//	log.Info("record renamed",
//	    logger.String("code", rec.Code),
//	    logger.String("label", rec.Label))
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field for structured logging.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field for structured logging.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Error creates an error field for structured logging.
//
// The field key is always "error". If err is nil, the value will be nil.
//
// Example:
//
//	if err := store.Upsert(ctx, rec); err != nil {
//	    log.Error("failed to write record",
//	        logger.Error(err),
//	        logger.String("code", rec.Code))
//	    return err
//	}
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey, Value: nil}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

// Duration creates a duration field. The value is rendered as a string such as "1.5s".
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}
