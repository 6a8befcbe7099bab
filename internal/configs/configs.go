/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters from operating system environment variables,
including the running environment, listen port, protocol timing (handshake
read deadline, ping cadence, liveness and inactivity windows), and the
connection and message throttling knobs.
*/
package configs

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        int    `envconfig:"PORT" default:"8088"`

	// Protocol Timing Settings
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	PingInterval      time.Duration `envconfig:"PING_INTERVAL" default:"1s"`
	PingTimeout       time.Duration `envconfig:"PING_TIMEOUT" default:"30s"`
	InactivityTimeout time.Duration `envconfig:"INACTIVITY_TIMEOUT" default:"600s"`
	SweepPeriod       time.Duration `envconfig:"SWEEP_PERIOD" default:"500ms"`

	// Throttling Settings
	AcceptRate   float64 `envconfig:"ACCEPT_RATE" default:"5"`
	AcceptBurst  int     `envconfig:"ACCEPT_BURST" default:"10"`
	MessageRate  float64 `envconfig:"MESSAGE_RATE" default:"20"`
	MessageBurst int     `envconfig:"MESSAGE_BURST" default:"40"`
}

// LoadConfig reads and parses the application configuration from environment
// variables, applying the declared defaults, and validates the result.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"READ_TIMEOUT", cfg.ReadTimeout},
		{"PING_INTERVAL", cfg.PingInterval},
		{"PING_TIMEOUT", cfg.PingTimeout},
		{"INACTIVITY_TIMEOUT", cfg.InactivityTimeout},
		{"SWEEP_PERIOD", cfg.SweepPeriod},
	} {
		if d.value <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration, got %s", d.name, d.value)
		}
	}

	if cfg.PingTimeout <= cfg.PingInterval {
		return nil, fmt.Errorf("PING_TIMEOUT (%s) must be longer than PING_INTERVAL (%s)", cfg.PingTimeout, cfg.PingInterval)
	}

	if cfg.AcceptRate <= 0 || cfg.AcceptBurst <= 0 {
		return nil, fmt.Errorf("accept throttle requires a positive rate and burst, got rate %v burst %d", cfg.AcceptRate, cfg.AcceptBurst)
	}

	if cfg.MessageRate <= 0 || cfg.MessageBurst <= 0 {
		return nil, fmt.Errorf("message throttle requires a positive rate and burst, got rate %v burst %d", cfg.MessageRate, cfg.MessageBurst)
	}

	return cfg, nil
}
