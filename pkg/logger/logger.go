package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger for structured key-value logging
type Logger struct {
	*zap.SugaredLogger
}

var (
	global *Logger
	mu     sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	// Environment selects the encoder: "production" for JSON, anything else for console
	Environment string
	// Level is the minimum enabled level (debug, info, warn, error)
	Level string
	// ServiceName is attached to every entry
	ServiceName string
}

// Init initializes the global logger. Safe to call once at process start.
func Init(cfg *Config) (*Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	base, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.ServiceName != "" {
		base = base.With(zap.String("service", cfg.ServiceName))
	}

	l := &Logger{base.Sugar()}

	mu.Lock()
	global = l
	mu.Unlock()

	return l, nil
}

// Get returns the global logger, initializing a development fallback if needed
func Get() *Logger {
	mu.RLock()
	if global != nil {
		defer mu.RUnlock()
		return global
	}
	mu.RUnlock()

	l, err := Init(&Config{Environment: "development"})
	if err != nil {
		// zap.NewDevelopmentConfig cannot fail to build with defaults
		panic(err)
	}
	return l
}

// With returns a child logger with the given key-value pairs attached
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// Sync flushes buffered log entries. Call on shutdown.
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
