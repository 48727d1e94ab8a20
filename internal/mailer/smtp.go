package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"

	"github.com/pagemail/pagemail/internal/backoff"
)

// SMTP delivers reports through an SMTP session. Port 465 opens an
// implicit TLS connection; other ports negotiate STARTTLS when the
// server offers it. Credentials are optional.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	Retry    backoff.Policy
}

func (s *SMTP) Name() string { return "smtp" }

// Deliver builds a multipart message and hands it to the server,
// retrying every failure under the transport's policy.
func (s *SMTP) Deliver(ctx context.Context, msg Message) error {
	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}

	port := s.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.Host, port)
	var auth smtp.Auth
	if s.Username != "" && s.Password != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	maxAttempts := s.Retry.Attempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	op := func(attempt int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if port == 465 {
			err = e.SendWithTLS(addr, auth, &tls.Config{ServerName: s.Host})
		} else {
			err = e.Send(addr, auth)
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Int("max", maxAttempts).Str("host", s.Host).Msg("smtp attempt failed")
		}
		return err
	}
	notify := func(_ int, delay time.Duration, _ error) {
		log.Info().Dur("delay", delay).Msg("backing off before retrying smtp")
	}
	if err := s.Retry.Do(op, smtpRetryable, notify); err != nil {
		return fmt.Errorf("smtp delivery via %s: %w", addr, err)
	}
	return nil
}

// Every SMTP failure is retryable; only a canceled run stops early.
func smtpRetryable(err error) bool {
	return !errors.Is(err, context.Canceled)
}
