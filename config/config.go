// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package config loads the TOML configuration of the
// scenery command.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gviegas/scenery/render"
)

type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

type EngineConfig struct {
	MaxDrawable    int           `toml:"max_drawable"` // render queue capacity
	DoubleBuffered bool          `toml:"double_buffered"`
	TickRate       time.Duration `toml:"tick_rate"` // zero runs frames back to back
	Frames         int           `toml:"frames"`    // zero runs until interrupted
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the configuration at path.
// Settings absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	rc := render.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			MaxDrawable:    rc.MaxDrawable,
			DoubleBuffered: rc.DoubleBuffered,
			TickRate:       16 * time.Millisecond,
			Frames:         0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks c for values that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Engine.MaxDrawable <= 0:
		return fmt.Errorf("engine.max_drawable must be positive, got %d", c.Engine.MaxDrawable)
	case c.Engine.TickRate < 0:
		return fmt.Errorf("engine.tick_rate must not be negative, got %s", c.Engine.TickRate)
	case c.Engine.Frames < 0:
		return fmt.Errorf("engine.frames must not be negative, got %d", c.Engine.Frames)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Render returns the render configuration described by c.
func (c *Config) Render() render.Config {
	return render.Config{
		DoubleBuffered: c.Engine.DoubleBuffered,
		MaxDrawable:    c.Engine.MaxDrawable,
	}
}

// NewLogger builds the logger described by cfg.
// An unknown level falls back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// Keep stdout for command output.
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
