// Package logger wires the probe's ambient structured-logging stack
// (SPEC_FULL's AMBIENT STACK section): go.uber.org/zap replaces the
// global logger at boot, the way the teacher's logger/zap package does,
// and each core subsystem gets its own named *zap.SugaredLogger handle
// instead of logging through one undifferentiated stream.
package logger

import (
	"os"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Subsystem names, mirroring the component breakdown of §2.
const (
	SubsystemConfigStore = "configstore"
	SubsystemExtension   = "extension"
	SubsystemSQLEngine   = "sqlengine"
	SubsystemTracing     = "tracing"
	SubsystemEngine      = "engine"
)

// Options configures Init's global logger.
type Options struct {
	// Level is a zapcore level name (debug/info/warn/error); empty
	// defaults to info, mirroring server.log_level (§6).
	Level string
	// File is a destination log file path; empty logs to stdout. Non-empty
	// paths are rotated through lumberjack the way the teacher's
	// logger/zap.newLogWriter backs non-console destinations.
	File string
}

// Init replaces the global zap logger per opts. Named subsystem loggers
// obtained via Named after Init pick up the new configuration; loggers
// already constructed before Init keep whatever the zap no-op default was.
func Init(opts Options) error {
	level := parseLevel(opts.Level)
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer(opts.File), level)
	zap.ReplaceGlobals(zap.New(core, zap.AddCaller()))
	return nil
}

// Named returns a SugaredLogger scoped to one of the Subsystem* names.
func Named(subsystem string) *zap.SugaredLogger {
	return zap.S().Named(subsystem)
}

// Sync flushes every global logger's buffered entries; call during
// shutdown.
func Sync() {
	_ = zap.L().Sync()
}

func writer(file string) zapcore.WriteSyncer {
	switch strings.TrimSpace(file) {
	case "", "/dev/stdout":
		return zapcore.AddSync(os.Stdout)
	case "/dev/stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:  file,
			MaxAge:    28,
			MaxSize:   100,
			LocalTime: true,
		})
	}
}

func parseLevel(level string) zapcore.Level {
	if level == "" {
		return zapcore.InfoLevel
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
