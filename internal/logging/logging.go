// Package logging configures the structured operation log.
//
// Grove appends a JSON record of every lifecycle operation (creation
// state transitions, rollbacks, per-repo teardown failures) to a
// rotating file, so an operator recovering from a partial failure can
// see exactly what the tool did. Human-facing output stays on
// stdout/stderr in the cli package; this log is for forensics.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mmr-tortoise/grove/internal/config"
)

// New builds a zap logger writing JSON records to the configured file,
// rotated by lumberjack. An empty file path disables logging and
// returns a nop logger.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(writer),
		level,
	)

	return zap.New(core), nil
}
