package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/pagemail/pagemail/internal/backoff"
)

// Client fetches a single page over HTTP with bounded retries. Server
// errors and 429 responses are retried under the client's backoff policy;
// any other bad status fails the fetch on the spot.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each attempt. Zero means no per-attempt deadline.
	Timeout time.Duration
	Retry   backoff.Policy
}

// Error reports a fetch that never produced a usable page. Attempts is
// the number actually performed, Err the fault of the last one.
type Error struct {
	URL      string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v (after %d attempt(s))", e.URL, e.Err, e.Attempts)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError is the per-attempt fault for a response outside 2xx.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Status)
}

// Fetch GETs rawURL and returns the body decoded to UTF-8 per the
// response's declared charset. It retries transport faults, 5xx and 429
// with the client's policy and gives up immediately on anything else.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	maxAttempts := c.Retry.Attempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var (
		content  string
		attempts int
	)
	op := func(attempt int) error {
		attempts = attempt
		body, err := c.tryOnce(ctx, rawURL)
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Int("attempt", attempt).Int("max", maxAttempts).Msg("fetch attempt failed")
			return err
		}
		content = body
		return nil
	}
	notify := func(_ int, delay time.Duration, _ error) {
		log.Info().Dur("delay", delay).Str("url", rawURL).Msg("backing off before retry")
	}
	if err := c.Retry.Do(op, retryable, notify); err != nil {
		return "", &Error{URL: rawURL, Attempts: attempts, Err: err}
	}
	return content, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return "", fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Timeout > 0 {
		tctx, cancel := context.WithTimeout(req.Context(), c.Timeout)
		defer cancel()
		req = req.WithContext(tctx)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Status: resp.StatusCode}
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return backoff.RetryableStatus(se.Status)
	}
	// Transport faults (DNS, refused connections, timeouts) are worth
	// another attempt; a canceled run is not.
	return !errors.Is(err, context.Canceled)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
