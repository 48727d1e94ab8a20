package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConfig marks configuration problems so main can map them to the
// dedicated exit code.
var ErrConfig = errors.New("configuration error")

// Defaults applied after flag, environment and config file merging.
const (
	DefaultSelector      = "body"
	DefaultMaxItems      = 20
	DefaultUserAgent     = "pagemail/1.0 (+https://github.com/pagemail/pagemail)"
	DefaultTimeout       = 15 * time.Second
	DefaultRetries       = 3
	DefaultBackoffFactor = 1 * time.Second
	DefaultMaxBackoff    = 60 * time.Second
	DefaultSMTPPort      = 587
	DefaultSubjectPrefix = "Daily Scrape"
	DefaultInspectLimit  = 10
)

// Config holds runtime configuration for the application.
type Config struct {
	URL       string
	Selectors []string
	MaxItems  int

	// Fetching
	UserAgent     string
	Timeout       time.Duration
	Retries       int
	BackoffFactor time.Duration
	MaxBackoff    time.Duration

	// SMTP delivery
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	// HTTP API delivery
	MailAPIKey string
	MailAPIURL string

	// Message
	From          string
	To            []string
	SubjectPrefix string

	// Behavior
	DryRun       bool
	Inspect      bool
	InspectLimit int
	ArtifactDir  string
}

// ApplyDefaults fills any field still unset after the flag, env and
// file layers have been applied. Zero means unset throughout.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = []string{DefaultSelector}
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = DefaultBackoffFactor
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = DefaultSMTPPort
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.InspectLimit == 0 {
		cfg.InspectLimit = DefaultInspectLimit
	}
}

// Validate performs minimal schema validation for required settings.
// Delivery settings are checked even for dry-run and inspect runs.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.URL) == "" {
		return fmt.Errorf("%w: page URL is required (set SCRAPE_URL or -url)", ErrConfig)
	}
	if cfg.MaxItems < 0 {
		return fmt.Errorf("%w: max items must not be negative", ErrConfig)
	}
	if cfg.Retries < 1 {
		return fmt.Errorf("%w: retries must be at least 1", ErrConfig)
	}
	if cfg.MailAPIKey != "" {
		if len(cfg.To) == 0 {
			return fmt.Errorf("%w: recipient list is empty (set EMAIL_TO)", ErrConfig)
		}
		return nil
	}
	if cfg.SMTPHost == "" || cfg.From == "" || len(cfg.To) == 0 {
		return fmt.Errorf("%w: delivery needs SENDGRID_API_KEY, or SMTP_HOST with EMAIL_FROM and EMAIL_TO", ErrConfig)
	}
	return nil
}

// SplitList parses a comma-separated flag or env value into entries,
// trimming whitespace and dropping empties.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return list
}
