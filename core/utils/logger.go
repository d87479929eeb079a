package utils

import (
	"go.uber.org/zap"

	"osprey-ehs/config"
)

// NewLogger builds the shared sugared logger. Logging disabled means a no-op
// logger so services can log unconditionally.
func NewLogger(cfg config.LoggingConfig) *zap.SugaredLogger {
	if !cfg.Enabled {
		return zap.NewNop().Sugar()
	}
	zc := zap.NewDevelopmentConfig()
	if cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
