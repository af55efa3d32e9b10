// Package logger 封裝 zap，提供服務內統一的結構化日誌介面
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ILogger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warning(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) ILogger
	Sync() error
}

type logger struct {
	zap *zap.Logger
}

func (l logger) Debug(msg string, fields ...Field) {
	l.zap.Debug(msg, fields...)
}

func (l logger) Info(msg string, fields ...Field) {
	l.zap.Info(msg, fields...)
}

func (l logger) Warning(msg string, fields ...Field) {
	l.zap.Warn(msg, fields...)
}

func (l logger) Error(msg string, fields ...Field) {
	l.zap.Error(msg, fields...)
}

func (l logger) With(fields ...Field) ILogger {
	return logger{zap: l.zap.With(fields...)}
}

func (l logger) Sync() error {
	return l.zap.Sync()
}

// New 依 level 建立 logger；debug 使用開發格式，其餘使用 JSON
func New(namespace, level string) (ILogger, error) {
	z, err := newZapLogger(namespace, level)
	if err != nil {
		return nil, err
	}
	return logger{zap: z}, nil
}

// NewNop 回傳不輸出任何內容的 logger，供測試使用
func NewNop() ILogger {
	return logger{zap: zap.NewNop()}
}

// FromZap 包裝既有的 *zap.Logger (例如 zaptest / observer)
func FromZap(z *zap.Logger) ILogger {
	return logger{zap: z}
}

func newZapLogger(namespace, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.InitialFields = map[string]interface{}{
		"namespace": namespace,
	}
	return cfg.Build()
}
