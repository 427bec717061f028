// Package config defines process configuration and its layered loading.
//
// Precedence (low to high): built-in defaults, optional YAML file named
// by KIBITZ_CONFIG, then KIBITZ_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/redact"
)

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database location.
	DBPath string `koanf:"db_path"`

	// PrivatePrefix marks payload keys as never-for-unprivileged-viewers.
	PrivatePrefix string `koanf:"private_prefix"`

	// DefaultMode is the redaction mode used when a request names none.
	DefaultMode string `koanf:"default_mode"`

	// Detect holds the stateful detector tunables.
	Detect detect.Config `koanf:"detect"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		Addr:          ":8791",
		DBPath:        "kibitz.db",
		PrivatePrefix: redact.DefaultPrivatePrefix,
		DefaultMode:   string(redact.ModeSpectator),
		Detect:        detect.DefaultConfig(),
	}
}

// Validate checks invariants that no layer may break.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.PrivatePrefix == "" {
		return errors.New("private_prefix must not be empty")
	}
	switch redact.Mode(c.DefaultMode) {
	case redact.ModeSpectator, redact.ModePostMatch, redact.ModeDirector:
	default:
		return fmt.Errorf("default_mode %q is not a redaction mode", c.DefaultMode)
	}
	if c.Detect.StallPeriod <= 0 {
		return errors.New("detect.stall_period must be positive")
	}
	if c.Detect.ProximityCooldownTurns < 0 {
		return errors.New("detect.proximity_cooldown_turns must not be negative")
	}
	for i, frac := range c.Detect.ThresholdFractions {
		if frac <= 0 || frac > 100 {
			return fmt.Errorf("detect.threshold_fractions[%d] = %d, want (0,100]", i, frac)
		}
		if i > 0 && frac <= c.Detect.ThresholdFractions[i-1] {
			return errors.New("detect.threshold_fractions must be strictly ascending")
		}
	}
	return nil
}
