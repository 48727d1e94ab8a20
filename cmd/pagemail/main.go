package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pagemail/pagemail/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(consoleWriter())

	// A .env beside the binary mirrors the environment cron would set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env load failed")
	}
	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("log file unavailable")
		} else {
			log.Logger = log.Output(zerolog.MultiLevelWriter(consoleWriter(), f))
		}
	}

	var (
		cfg         app.Config
		selectors   string
		recipients  string
		configPath  string
		testMode    bool
		verbose     bool
		showVersion bool
	)

	// Credentials (SMTP_USER, SMTP_PASS, SENDGRID_API_KEY) stay env-only.
	flag.StringVar(&cfg.URL, "url", "", "Page URL to scrape (env SCRAPE_URL)")
	flag.StringVar(&selectors, "selectors", "", "Comma-separated CSS selectors (env CSS_SELECTOR, default body)")
	flag.IntVar(&cfg.MaxItems, "max-items", 0, "Global budget for extracted fragments (env MAX_ITEMS, default 20)")
	flag.StringVar(&cfg.UserAgent, "user-agent", "", "User-Agent header for page requests (env USER_AGENT)")
	flag.DurationVar(&cfg.Timeout, "timeout", 0, "Per-attempt request timeout (env REQUEST_TIMEOUT, default 15s)")
	flag.IntVar(&cfg.Retries, "retries", 0, "Attempts per network operation (env RETRIES, default 3)")
	flag.DurationVar(&cfg.BackoffFactor, "backoff-factor", 0, "Base delay for exponential backoff (env BACKOFF_FACTOR, default 1s)")
	flag.DurationVar(&cfg.MaxBackoff, "max-backoff", 0, "Upper bound for one backoff pause (env MAX_BACKOFF, default 60s)")
	flag.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP relay host (env SMTP_HOST)")
	flag.IntVar(&cfg.SMTPPort, "smtp-port", 0, "SMTP relay port (env SMTP_PORT, default 587)")
	flag.StringVar(&cfg.From, "from", "", "Sender address (env EMAIL_FROM)")
	flag.StringVar(&recipients, "to", "", "Comma-separated recipient addresses (env EMAIL_TO)")
	flag.StringVar(&cfg.SubjectPrefix, "subject-prefix", "", "Subject prefix (env EMAIL_SUBJECT_PREFIX, default \"Daily Scrape\")")
	flag.StringVar(&cfg.ArtifactDir, "artifacts", "", "Directory for dated digest copies (env ARTIFACT_DIR)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Optional YAML or JSON config file")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Print the rendered email instead of sending it")
	flag.BoolVar(&testMode, "test", false, "Alias for -dry-run")
	flag.BoolVar(&cfg.Inspect, "inspect", false, "Print matched-node previews per selector instead of sending")
	flag.IntVar(&cfg.InspectLimit, "inspect-limit", 0, "Nodes to preview per selector with -inspect (default 10)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("pagemail %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}
	if testMode {
		cfg.DryRun = true
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg.Selectors = app.SplitList(selectors)
	cfg.To = app.SplitList(recipients)

	if err := run(cfg, configPath); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

// run merges the remaining configuration layers, validates the result
// and executes one pipeline pass.
func run(cfg app.Config, configPath string) error {
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", app.ErrConfig, configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyDefaults(&cfg)

	if err := app.Validate(cfg); err != nil {
		return err
	}

	a := app.New(cfg)
	return a.Run(context.Background())
}

// exitCode maps failures to the exit policy: configuration problems
// exit 2, anything else exits 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, app.ErrConfig) {
		return 2
	}
	return 1
}
