package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New membuat logger zap sesuai APP_ENV. Selain "production" memakai
// konfigurasi development yang lebih mudah dibaca di terminal.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// Must seperti New tetapi jatuh ke zap.NewNop bila konfigurasi gagal.
func Must(appEnv string) *zap.Logger {
	l, err := New(appEnv)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
