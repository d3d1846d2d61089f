package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields to be added to a logger
type Fields map[string]interface{}

// Logger contains logger and fields
type Logger struct {
	logger *zap.SugaredLogger
	fields []interface{}
}

var (
	atomicLevel      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	zapSugaredLogger *zap.SugaredLogger
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zapLogger = zap.NewNop()
	}
	zapSugaredLogger = zapLogger.Sugar()
}

// SetLevel changes the level of the process logger, e.g. "debug", "info", "warn".
// Unknown levels are ignored.
func SetLevel(level string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return
	}
	atomicLevel.SetLevel(l)
}

// Log returns an empty field logger
func Log() Logger {
	return Logger{
		logger: zapSugaredLogger,
		fields: []interface{}{},
	}
}

// Nop returns a logger discarding everything
func Nop() Logger {
	return Logger{
		logger: zap.NewNop().Sugar(),
		fields: []interface{}{},
	}
}

// WithField add a key/value pair to its fields
func (l Logger) WithField(key string, value interface{}) Logger {
	fields := make([]interface{}, 0, len(l.fields)+2)
	fields = append(fields, l.fields...)
	l.fields = append(fields, key, value)
	return l
}

// WithFields add multiple key/value pairs to its fields
func (l Logger) WithFields(kvs Fields) Logger {
	for k, v := range kvs {
		l = l.WithField(k, v)
	}
	return l
}

func (l Logger) sugared() *zap.SugaredLogger {
	if l.logger == nil {
		return zapSugaredLogger.With(l.fields...)
	}
	return l.logger.With(l.fields...)
}

// Debug log
func (l Logger) Debug(args ...interface{}) {
	l.sugared().Debug(args...)
}

// Info log
func (l Logger) Info(args ...interface{}) {
	l.sugared().Info(args...)
}

// Warn log
func (l Logger) Warn(args ...interface{}) {
	l.sugared().Warn(args...)
}

// Error log
func (l Logger) Error(args ...interface{}) {
	l.sugared().Error(args...)
}

// Panic log
func (l Logger) Panic(args ...interface{}) {
	l.sugared().Panic(args...)
}
