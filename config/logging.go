package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func loggerConfig(env string) (zap.Config, bool) {
	switch env {
	case "production":
		return zap.NewProductionConfig(), true
	case "development":
		return zap.NewDevelopmentConfig(), true
	}
	return zap.Config{}, false
}

// setLogger builds the logger for the given environment
func setLogger(env string) (*zap.Logger, error) {
	if cfg, ok := loggerConfig(env); ok {
		return cfg.Build()
	}
	return zap.NewExample(), nil
}

// withLevel rebuilds the environment's logger at the given level name
func withLevel(logger *zap.Logger, env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if cfg, ok := loggerConfig(env); ok {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build()
	}
	return logger.WithOptions(zap.IncreaseLevel(lvl)), nil
}
