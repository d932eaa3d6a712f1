// SPDX-License-Identifier: MIT

// Package config loads daemon configuration with precedence
// ENV > optional YAML file > defaults.
package config

import (
	"fmt"
	"time"
)

// Portal modes.
const (
	PortalModeScript = "script" // in-memory scripted portal (dev / tests)
	PortalModeRemote = "remote" // external browser-automation adapter
)

// AppConfig is the resolved daemon configuration.
type AppConfig struct {
	ListenAddr string
	LogLevel   string
	DataDir    string // empty disables the session archive

	PollInterval   time.Duration // default poll interval for new sessions
	SessionTimeout time.Duration // total wall-time budget per session

	PortalMode  string
	PortalRate  float64 // portal calls per second, shared across sessions
	PortalBurst int

	StartRatePerMinute int // per-IP limit on session creation

	NotifyProvider string
	NotifyFrom     string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	NotifyAPIURL   string
	NotifyAPIKey   string
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr:         ":8080",
		LogLevel:           "info",
		PollInterval:       10 * time.Second,
		SessionTimeout:     40 * time.Minute,
		PortalMode:         PortalModeScript,
		PortalRate:         1,
		PortalBurst:        3,
		StartRatePerMinute: 10,
		NotifyProvider:     "off",
		SMTPPort:           587,
	}
}

// Validate checks the resolved configuration for unusable values. Missing
// notifier credentials are deliberately NOT an error here; they degrade
// notification delivery to a logged failure instead of blocking startup.
func (c AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.SessionTimeout)
	}
	if c.PortalMode != PortalModeScript && c.PortalMode != PortalModeRemote {
		return fmt.Errorf("unknown portal mode %q", c.PortalMode)
	}
	if c.PortalRate <= 0 {
		return fmt.Errorf("portal rate must be positive, got %v", c.PortalRate)
	}
	if c.StartRatePerMinute <= 0 {
		return fmt.Errorf("start rate limit must be positive, got %d", c.StartRatePerMinute)
	}
	return nil
}
