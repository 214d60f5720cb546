package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// zapLogger routes gocron's key/value logging into zap
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newZapLogger(logger *zap.Logger) gocron.Logger {
	return &zapLogger{sugar: logger.Named("scheduler").Sugar()}
}

func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
