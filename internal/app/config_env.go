package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment
// variables. Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.URL == "" {
		cfg.URL = os.Getenv("SCRAPE_URL")
	}
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = SplitList(os.Getenv("CSS_SELECTOR"))
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = envInt("MAX_ITEMS")
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("USER_AGENT")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = envDuration("REQUEST_TIMEOUT")
	}
	if cfg.Retries == 0 {
		cfg.Retries = envInt("RETRIES")
	}
	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = envDuration("BACKOFF_FACTOR")
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = envDuration("MAX_BACKOFF")
	}

	if cfg.SMTPHost == "" {
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = envInt("SMTP_PORT")
	}
	if cfg.SMTPUser == "" {
		cfg.SMTPUser = os.Getenv("SMTP_USER")
	}
	if cfg.SMTPPass == "" {
		cfg.SMTPPass = os.Getenv("SMTP_PASS")
	}

	if cfg.From == "" {
		cfg.From = os.Getenv("EMAIL_FROM")
	}
	if len(cfg.To) == 0 {
		cfg.To = SplitList(os.Getenv("EMAIL_TO"))
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = os.Getenv("EMAIL_SUBJECT_PREFIX")
	}

	if cfg.MailAPIKey == "" {
		cfg.MailAPIKey = os.Getenv("SENDGRID_API_KEY")
	}
	if cfg.MailAPIURL == "" {
		cfg.MailAPIURL = os.Getenv("SENDGRID_API_URL")
	}

	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = os.Getenv("ARTIFACT_DIR")
	}
}

// envInt reads an integer variable; unset or malformed values yield
// zero, which the defaults layer later fills.
func envInt(key string) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func envDuration(key string) time.Duration {
	return ParseDurationValue(os.Getenv(key))
}

// ParseDurationValue parses a duration that may be a Go duration
// string or a bare number of seconds, so REQUEST_TIMEOUT=15 and
// REQUEST_TIMEOUT=15s are equivalent. Empty or malformed input yields
// zero.
func ParseDurationValue(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return 0
}
