// Package logging initializes the process-wide logging subsystem.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Config is the configuration for the logging subsystem.
type Config struct {
	// Level is the logging level.
	Level zapcore.Level `yaml:"level"`
}

// UnmarshalYAML parses the level from its textual form, e.g. "debug".
func (m *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Level string `yaml:"level"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Level == "" {
		m.Level = zapcore.InfoLevel
		return nil
	}

	level, err := zapcore.ParseLevel(raw.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	m.Level = level
	return nil
}

// Init builds a console logger writing to stderr. Levels are colored when
// stderr is a terminal. The returned atomic level can be used to change
// verbosity at runtime.
func Init(cfg *Config) (*zap.SugaredLogger, zap.AtomicLevel, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if term.IsTerminal(int(os.Stderr.Fd())) {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(cfg.Level),
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.Sugar(), config.Level, nil
}
