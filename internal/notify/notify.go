// SPDX-License-Identifier: MIT

// Package notify delivers seat-available notifications. A single Notify
// capability is backed by swappable provider adapters selected via
// configuration; delivery failures are reported to the caller but never
// retried here.
package notify

import (
	"context"
	"fmt"

	xglog "github.com/arms-tools/seatwatch/internal/log"
)

// Notifier delivers one seat-available message to a recipient.
type Notifier interface {
	Notify(ctx context.Context, courseCode, recipient string) error
}

// Provider names accepted in configuration.
const (
	ProviderOff  = "off"
	ProviderSMTP = "smtp"
	ProviderAPI  = "api"
)

// Config selects and parameterises the provider adapter.
type Config struct {
	Provider string
	From     string

	// smtp provider
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	// api provider (generic transactional-email HTTP endpoint)
	APIURL string
	APIKey string
}

// New builds the configured notifier. It returns nil (and no error) when
// notifications are disabled or essential credentials are missing: missing
// credentials degrade delivery to a logged failure instead of refusing to
// start the daemon.
func New(cfg Config) (Notifier, error) {
	logger := xglog.WithComponent("notify")

	switch cfg.Provider {
	case "", ProviderOff:
		logger.Info().Str(xglog.FieldEvent, "notify.disabled").Msg("notifications disabled")
		return nil, nil

	case ProviderSMTP:
		if cfg.SMTPHost == "" || cfg.From == "" {
			logger.Warn().
				Str(xglog.FieldEvent, "notify.degraded").
				Msg("smtp provider selected but host or sender missing, notifications disabled")
			return nil, nil
		}
		return newSMTPNotifier(cfg), nil

	case ProviderAPI:
		if cfg.APIURL == "" || cfg.APIKey == "" {
			logger.Warn().
				Str(xglog.FieldEvent, "notify.degraded").
				Msg("api provider selected but url or key missing, notifications disabled")
			return nil, nil
		}
		return newAPINotifier(cfg), nil
	}

	return nil, fmt.Errorf("unknown notification provider %q", cfg.Provider)
}

// subject and body shared by all providers.
func subjectLine(courseCode string) string {
	return fmt.Sprintf("Seat available for %s", courseCode)
}

func bodyText(courseCode string) string {
	return fmt.Sprintf(
		"A seat opened up for course %s and a claim attempt was made on your behalf.\r\n"+
			"Log in to the enrollment portal now to confirm your selection.\r\n", courseCode)
}
