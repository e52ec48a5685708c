// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxUploadBytes caps the size of an uploaded CSV.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxRows caps the number of data rows in one file.
	MaxRows int `koanf:"max_rows"`

	// MaxSessions bounds the session store; the least recently used is evicted.
	MaxSessions int `koanf:"max_sessions"`

	// SessionTTLMinutes is how long an idle upload is kept.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// PitchScale is the number of SVG pixels per pitch unit.
	PitchScale int `koanf:"pitch_scale"`

	// DefaultWeight is the marker weight for events without their metric.
	DefaultWeight float64 `koanf:"default_weight"`

	// MaxMarkerRadius is the radius, in pitch units, of a weight-1 marker.
	MaxMarkerRadius float64 `koanf:"max_marker_radius"`

	// PreviewRows is how many rows of an upload are echoed back on the page.
	PreviewRows int `koanf:"preview_rows"`

	// SecureCookie marks the session cookie Secure; enable behind HTTPS.
	SecureCookie bool `koanf:"secure_cookie"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		MaxUploadBytes:    5 << 20,
		MaxRows:           50_000,
		MaxSessions:       256,
		SessionTTLMinutes: 30,
		PitchScale:        6,
		DefaultWeight:     0.05,
		MaxMarkerRadius:   4,
		PreviewRows:       5,
	}
}

// SessionTTL returns SessionTTLMinutes as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Validate reports the first invalid field.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.MaxRows <= 0:
		return fmt.Errorf("%w: max_rows must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.SessionTTLMinutes < 0:
		return fmt.Errorf("%w: session_ttl_minutes must not be negative", ErrInvalidConfig)
	case c.PitchScale <= 0:
		return fmt.Errorf("%w: pitch_scale must be positive", ErrInvalidConfig)
	case c.DefaultWeight <= 0 || c.DefaultWeight > 1:
		return fmt.Errorf("%w: default_weight must be in (0,1], got %g", ErrInvalidConfig, c.DefaultWeight)
	case c.MaxMarkerRadius <= 0:
		return fmt.Errorf("%w: max_marker_radius must be positive", ErrInvalidConfig)
	case c.PreviewRows < 0:
		return fmt.Errorf("%w: preview_rows must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
