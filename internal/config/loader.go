// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional YAML configuration file. Zero values mean
// "not set" and keep the layer below.
type fileConfig struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"logLevel"`
	DataDir  string `yaml:"dataDir"`

	PollInterval   string `yaml:"pollInterval"`
	SessionTimeout string `yaml:"sessionTimeout"`

	Portal struct {
		Mode  string  `yaml:"mode"`
		Rate  float64 `yaml:"rate"`
		Burst int     `yaml:"burst"`
	} `yaml:"portal"`

	StartRatePerMinute int `yaml:"startRatePerMinute"`

	Notify struct {
		Provider string `yaml:"provider"`
		From     string `yaml:"from"`
		SMTPHost string `yaml:"smtpHost"`
		SMTPPort int    `yaml:"smtpPort"`
		APIURL   string `yaml:"apiUrl"`
	} `yaml:"notify"`
}

// Load resolves the configuration with precedence ENV > file > defaults.
// path may be empty, in which case the file layer is skipped. Credentials
// (SMTP password, API key) are only ever read from the environment.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ListenAddr, fc.Listen)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.DataDir, fc.DataDir)
	if err := setDuration(&cfg.PollInterval, fc.PollInterval); err != nil {
		return fmt.Errorf("config file %s: pollInterval: %w", path, err)
	}
	if err := setDuration(&cfg.SessionTimeout, fc.SessionTimeout); err != nil {
		return fmt.Errorf("config file %s: sessionTimeout: %w", path, err)
	}
	setString(&cfg.PortalMode, fc.Portal.Mode)
	if fc.Portal.Rate > 0 {
		cfg.PortalRate = fc.Portal.Rate
	}
	if fc.Portal.Burst > 0 {
		cfg.PortalBurst = fc.Portal.Burst
	}
	if fc.StartRatePerMinute > 0 {
		cfg.StartRatePerMinute = fc.StartRatePerMinute
	}
	setString(&cfg.NotifyProvider, fc.Notify.Provider)
	setString(&cfg.NotifyFrom, fc.Notify.From)
	setString(&cfg.SMTPHost, fc.Notify.SMTPHost)
	if fc.Notify.SMTPPort > 0 {
		cfg.SMTPPort = fc.Notify.SMTPPort
	}
	setString(&cfg.NotifyAPIURL, fc.Notify.APIURL)
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.ListenAddr = ParseString("SEATWATCH_LISTEN", cfg.ListenAddr)
	cfg.LogLevel = ParseString("SEATWATCH_LOG_LEVEL", cfg.LogLevel)
	cfg.DataDir = ParseString("SEATWATCH_DATA", cfg.DataDir)
	cfg.PollInterval = ParseDuration("SEATWATCH_POLL_INTERVAL", cfg.PollInterval)
	cfg.SessionTimeout = ParseDuration("SEATWATCH_SESSION_TIMEOUT", cfg.SessionTimeout)
	cfg.PortalMode = ParseString("SEATWATCH_PORTAL", cfg.PortalMode)
	cfg.PortalRate = ParseFloat("SEATWATCH_PORTAL_RATE", cfg.PortalRate)
	cfg.PortalBurst = ParseInt("SEATWATCH_PORTAL_BURST", cfg.PortalBurst)
	cfg.StartRatePerMinute = ParseInt("SEATWATCH_START_RATE", cfg.StartRatePerMinute)

	cfg.NotifyProvider = ParseString("SEATWATCH_NOTIFY_PROVIDER", cfg.NotifyProvider)
	cfg.NotifyFrom = ParseString("SEATWATCH_NOTIFY_FROM", cfg.NotifyFrom)
	cfg.SMTPHost = ParseString("SEATWATCH_SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = ParseInt("SEATWATCH_SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUser = ParseString("SEATWATCH_SMTP_USER", cfg.SMTPUser)
	cfg.SMTPPass = ParseString("SEATWATCH_SMTP_PASS", cfg.SMTPPass)
	cfg.NotifyAPIURL = ParseString("SEATWATCH_NOTIFY_API_URL", cfg.NotifyAPIURL)
	cfg.NotifyAPIKey = ParseString("SEATWATCH_NOTIFY_API_KEY", cfg.NotifyAPIKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
