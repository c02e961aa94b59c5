package forme

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the narrow structured-logging surface the runtime depends
// on, constructor-injected rather than a package-level global (unlike
// a logging package that keeps a singleton *zap.Logger —
// this module has no equivalent of a long-lived server process with one
// obvious global, and AppState/Runtime are already built via explicit
// constructors, so the logger follows the same convention).
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
	Sync() error
}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct{ s *zap.SugaredLogger }

func (z *zapLogger) Debugw(msg string, kv ...any) { z.s.Debugw(msg, kv...) }
func (z *zapLogger) Infow(msg string, kv ...any)  { z.s.Infow(msg, kv...) }
func (z *zapLogger) Warnw(msg string, kv ...any)  { z.s.Warnw(msg, kv...) }
func (z *zapLogger) Errorw(msg string, kv ...any) { z.s.Errorw(msg, kv...) }
func (z *zapLogger) Sync() error                  { return z.s.Sync() }

// NewLogger builds a Logger writing structured console output at the
// given level ("debug", "info", "warn", "error"); an empty level
// produces a silent (no-op) logger, since the runtime must never write
// to stdout/stderr while the terminal is in raw/alternate-screen mode
// except through the terminal writer itself (§5 "the terminal is owned
// by the runtime"). When a level is set, output goes to outputPaths,
// or to stderr if none are given.
func NewLogger(level string, outputPaths ...string) (Logger, error) {
	if level == "" {
		return &zapLogger{s: zap.NewNop().Sugar()}, nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: built.Sugar()}, nil
}

// NopLogger returns a Logger that discards everything, for callers that
// have not configured logging.
func NopLogger() Logger { return &zapLogger{s: zap.NewNop().Sugar()} }
