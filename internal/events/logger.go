package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// zapAdapter lets watermill log through zap.
type zapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter wraps logger for watermill components.
func NewZapAdapter(logger *zap.Logger) watermill.LoggerAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapAdapter{logger: logger}
}

func (a *zapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (a *zapAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, zapFields(fields)...)
}

func (a *zapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

// Trace has no zap level of its own.
func (a *zapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

func (a *zapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zapAdapter{logger: a.logger.With(zapFields(fields)...)}
}

func zapFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
