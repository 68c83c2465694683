// Package log provides the process-wide zap logger shared by the binaries.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	baseLogger *zap.Logger
	log        *zap.SugaredLogger
	// helpers backs the package-level functions below; it skips their frame so
	// entries report the caller's location.
	helpers *zap.SugaredLogger
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	setLogger(zapLogger)
	return nil
}

func setLogger(l *zap.Logger) {
	baseLogger = l
	log = l.Sugar()
	helpers = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func ensure() {
	if baseLogger == nil {
		l, _ := zap.NewProduction()
		setLogger(l)
	}
}

// GetZapLogger returns the base zap logger, for the database layer.
func GetZapLogger() *zap.Logger {
	ensure()
	return baseLogger
}

// GetSugaredLogger returns the sugared logger handed to components that take
// one (the advisor, the HTTP app).
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if baseLogger != nil {
		_ = baseLogger.Sync()
	}
}

func Debugw(msg string, keysAndValues ...interface{}) {
	ensure()
	helpers.Debugw(msg, keysAndValues...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	ensure()
	helpers.Infow(msg, keysAndValues...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	ensure()
	helpers.Warnw(msg, keysAndValues...)
}

func Fatalf(template string, args ...interface{}) {
	ensure()
	helpers.Fatalf(template, args...)
}
