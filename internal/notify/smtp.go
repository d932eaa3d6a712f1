// SPDX-License-Identifier: MIT

package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

// smtpNotifier sends mail through a plain SMTP relay using net/smtp. The
// standard library client is used because no mail library is carried by this
// project's dependency set.
type smtpNotifier struct {
	addr string
	auth smtp.Auth
	from string

	// sendMail is swappable for tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func newSMTPNotifier(cfg Config) *smtpNotifier {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return &smtpNotifier{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(port)),
		auth:     auth,
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}
}

func (n *smtpNotifier) Notify(ctx context.Context, courseCode, recipient string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(
		"From: " + n.from + "\r\n" +
			"To: " + recipient + "\r\n" +
			"Subject: " + subjectLine(courseCode) + "\r\n" +
			"\r\n" +
			bodyText(courseCode))

	if err := n.sendMail(n.addr, n.auth, n.from, []string{recipient}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}
