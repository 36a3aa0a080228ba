// Package logging builds the zap logger cohort writes its audit trail to.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amonks/cohort/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is the log file name inside the state directory.
const DefaultFile = "cohort.log"

// New builds a logger from the [log] config section. Output goes to the
// configured file, or cohort.log in stateDir; it never goes to stdout.
// debug forces the debug level.
func New(cfg config.Log, stateDir string, debug bool) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "", "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.Sampling = nil
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: console, json)", cfg.Format)
	}

	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if debug {
		level = zapcore.DebugLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Development = false
	zapCfg.DisableStacktrace = true

	path := cfg.File
	if path == "" {
		path = filepath.Join(stateDir, DefaultFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
