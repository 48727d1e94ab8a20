package backoff

import (
	"math"
	"math/rand"
	"net/http"
	"time"
)

// Policy describes bounded exponential backoff with jitter, shared by the
// page fetcher and the delivery transports. The zero value performs a
// single attempt with no pauses.
type Policy struct {
	// Attempts is the total number of tries including the first. Minimum 1.
	Attempts int
	// Factor is the base delay; attempt n is followed by Factor*2^(n-1).
	Factor time.Duration
	// Cap, when positive, bounds the pre-jitter delay.
	Cap time.Duration

	// Sleep and Rand are seams for tests; nil means time.Sleep and
	// rand.Float64.
	Sleep func(time.Duration)
	Rand  func() float64
}

// Delay returns the pause that follows the given 1-based attempt: the
// capped exponential plus up to 10% random jitter.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(p.Factor) * math.Pow(2, float64(attempt-1))
	if limit := float64(p.Cap); p.Cap > 0 && base > limit {
		base = limit
	}
	jitter := p.random() * 0.1 * base
	return time.Duration(base + jitter)
}

// Do runs op until it succeeds, fails a retryable check, or spends the
// attempt budget. It pauses Delay(n) between attempts, never after the
// last one, and returns the last error on exhaustion. A nil retryable
// treats every error as retryable. notify, when non-nil, observes each
// retryable failure together with the pause that will precede the next
// attempt.
func (p Policy) Do(op func(attempt int) error, retryable func(error) bool, notify func(attempt int, delay time.Duration, err error)) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		delay := p.Delay(attempt)
		if notify != nil {
			notify(attempt, delay, err)
		}
		p.sleep(delay)
	}
	return lastErr
}

// RetryableStatus reports whether an HTTP status is worth another
// attempt: any 5xx, plus 429 Too Many Requests.
func RetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func (p Policy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (p Policy) random() float64 {
	if p.Rand != nil {
		return p.Rand()
	}
	return rand.Float64()
}
