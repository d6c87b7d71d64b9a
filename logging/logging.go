// SPDX-License-Identifier: MIT

// Package logging builds the zap logger shared by the command-line tools.
// Library packages never build loggers themselves: they accept a *zap.Logger
// through an option and default to zap.NewNop.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and flavour of the logger.
type Config struct {
	Level       string `yaml:"level"`       // debug, info, warn, error; default info
	Development bool   `yaml:"development"` // console encoding, caller and stack traces
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return logger, nil
}
