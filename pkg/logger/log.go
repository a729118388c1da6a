package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gearguard/pkg/config"
)

// NewLogger собирает консольный логгер: stdout плюс файл, если путь задан.
func NewLogger(cfg config.LogConfig) *zap.Logger {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	outputs := []string{"stdout"}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err == nil {
			outputs = append(outputs, cfg.FilePath)
		}
	}

	dualConfig := zap.Config{
		Encoding:         "console",
		Level:            level,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	dualLogger, err := dualConfig.Build()
	if err != nil {
		panic(err)
	}

	return dualLogger
}
