package mailer

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/pagemail/pagemail/internal/backoff"
)

const (
	defaultAPIBaseURL = "https://api.sendgrid.com"
	apiSendPath       = "/v3/mail/send"
	apiTimeout        = 30 * time.Second
	fallbackSender    = "no-reply@example.com"
)

// API delivers reports through a SendGrid-compatible HTTP mail endpoint.
type API struct {
	Retry  backoff.Policy
	client *resty.Client
}

// NewAPI builds the transport. An empty baseURL targets the hosted
// SendGrid endpoint.
func NewAPI(key, baseURL string, retry backoff.Policy) *API {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(apiTimeout).
		SetAuthToken(key)
	return &API{Retry: retry, client: client}
}

func (a *API) Name() string { return "sendgrid" }

type apiAddress struct {
	Email string `json:"email"`
}

type apiPersonalization struct {
	To      []apiAddress `json:"to"`
	Subject string       `json:"subject"`
}

type apiContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type apiPayload struct {
	Personalizations []apiPersonalization `json:"personalizations"`
	From             apiAddress           `json:"from"`
	Content          []apiContent         `json:"content"`
}

// apiStatusError is the per-attempt fault for a rejected request.
type apiStatusError struct {
	Status int
	Body   string
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("mail api returned %d: %s", e.Status, e.Body)
}

// Deliver posts the message, retrying 5xx, 429 and transport faults
// under the transport's policy. Any other rejection fails immediately.
func (a *API) Deliver(ctx context.Context, msg Message) error {
	payload := buildPayload(msg)
	maxAttempts := a.Retry.Attempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	op := func(attempt int) error {
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(apiSendPath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Int("max", maxAttempts).Msg("mail api attempt failed")
			return err
		}
		if code := resp.StatusCode(); code < 200 || code > 299 {
			log.Warn().Int("status", code).Int("attempt", attempt).Int("max", maxAttempts).Msg("mail api rejected the message")
			return &apiStatusError{Status: code, Body: resp.String()}
		}
		return nil
	}
	notify := func(_ int, delay time.Duration, _ error) {
		log.Info().Dur("delay", delay).Msg("backing off before retrying mail api")
	}
	if err := a.Retry.Do(op, apiRetryable, notify); err != nil {
		return fmt.Errorf("mail api delivery: %w", err)
	}
	return nil
}

func buildPayload(msg Message) apiPayload {
	to := make([]apiAddress, 0, len(msg.To))
	for _, r := range msg.To {
		to = append(to, apiAddress{Email: r})
	}
	content := []apiContent{{Type: "text/plain", Value: msg.Text}}
	if msg.HTML != "" {
		content = append(content, apiContent{Type: "text/html", Value: msg.HTML})
	}
	return apiPayload{
		Personalizations: []apiPersonalization{{To: to, Subject: msg.Subject}},
		From:             apiAddress{Email: bareAddress(msg.From)},
		Content:          content,
	}
}

// bareAddress reduces "Name <user@host>" to user@host for providers
// that want a plain address.
func bareAddress(from string) string {
	if a, err := netmail.ParseAddress(from); err == nil {
		return a.Address
	}
	if from == "" {
		return fallbackSender
	}
	return from
}

func apiRetryable(err error) bool {
	var se *apiStatusError
	if errors.As(err, &se) {
		return backoff.RetryableStatus(se.Status)
	}
	return !errors.Is(err, context.Canceled)
}
