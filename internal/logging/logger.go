// Package logging builds the service logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wordmatch-service/internal/config"
)

// New returns a JSON production logger, or a console logger when
// cfg.Development is set.
func New(cfg config.Logging) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	zcfg.DisableStacktrace = !cfg.Development
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("service", "wordmatch")), nil
}
