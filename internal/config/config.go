// Package config loads goalkeeper configuration from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ayusman/goalkeeper/internal/game"
)

// Config holds all runtime settings.
type Config struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	DataDir string `env:"DATA_DIR"`
	WebDir  string `env:"WEB_DIR"`
	HookDir string `env:"HOOK_DIR"`

	// CameraID selects the server-side camera; -1 leaves hand tracking to the browser.
	CameraID     int     `env:"CAMERA_ID" envDefault:"-1"`
	MotionThresh float64 `env:"MOTION_THRESHOLD" envDefault:"1.0"`
	FrameRate    int     `env:"FRAME_RATE" envDefault:"60"`
	Tray         bool    `env:"TRAY" envDefault:"false"`

	GoalWidth    float64 `env:"GOAL_WIDTH" envDefault:"7"`
	GoalHeight   float64 `env:"GOAL_HEIGHT" envDefault:"5"`
	GoalDepth    float64 `env:"GOAL_DEPTH" envDefault:"0.1"`
	GoalDistance float64 `env:"GOAL_DISTANCE" envDefault:"10"`

	RedisURL     string `env:"REDIS_URL"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"goalkeeper:rounds"`
}

// Prefix is prepended to every variable name.
const Prefix = "GOALKEEPER_"

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".goalkeeper")
	}
	if cfg.HookDir == "" {
		cfg.HookDir = filepath.Join(cfg.DataDir, "hooks")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return errors.New("frame rate must be positive")
	}
	if c.MotionThresh <= 0 {
		return errors.New("motion threshold must be positive")
	}
	if err := c.Goal().Validate(); err != nil {
		return err
	}
	return nil
}

// Goal returns the configured goal dimensions.
func (c *Config) Goal() game.GoalDimensions {
	return game.GoalDimensions{
		Width:    c.GoalWidth,
		Height:   c.GoalHeight,
		Depth:    c.GoalDepth,
		Distance: c.GoalDistance,
	}
}

// DBPath returns the sqlite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "goalkeeper.db")
}
