package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewSugaredLogger builds the logger for the named command.
//
// verbose selects zap's development config (console output, debug level);
// otherwise the production JSON config is used at info level with ISO8601
// timestamps. Every entry carries the logger name.
func NewSugaredLogger(name string, verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s logger: %w", name, err)
	}
	return l.Named(name).Sugar(), nil
}
