package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pagemail/pagemail/internal/backoff"
	"github.com/pagemail/pagemail/internal/extract"
	"github.com/pagemail/pagemail/internal/fetch"
	"github.com/pagemail/pagemail/internal/mailer"
	"github.com/pagemail/pagemail/internal/report"
)

// App wires the fetch, extract, render and deliver stages together.
type App struct {
	cfg       Config
	fetcher   *fetch.Client
	transport mailer.Transport

	// Out receives dry-run and inspection output; os.Stdout by default.
	Out io.Writer
	// Now supplies the subject and artifact date; time.Now by default.
	Now func() time.Time
}

// New builds the application from a merged, validated configuration.
// The fetcher and whichever transport the config selects share one
// retry policy.
func New(cfg Config) *App {
	policy := backoff.Policy{
		Attempts: cfg.Retries,
		Factor:   cfg.BackoffFactor,
		Cap:      cfg.MaxBackoff,
	}
	a := &App{
		cfg: cfg,
		fetcher: &fetch.Client{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Retry:     policy,
		},
		Out: os.Stdout,
		Now: time.Now,
	}
	if cfg.MailAPIKey != "" {
		a.transport = mailer.NewAPI(cfg.MailAPIKey, cfg.MailAPIURL, policy)
	} else {
		a.transport = &mailer.SMTP{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Retry:    policy,
		}
	}
	return a
}

// Run executes one pipeline pass: fetch the page, then either preview
// it (inspect), print the rendered email (dry-run), or render and
// deliver it.
func (a *App) Run(ctx context.Context) error {
	page, err := a.fetcher.Fetch(ctx, a.cfg.URL)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	log.Info().Str("url", a.cfg.URL).Int("bytes", len(page)).Msg("page fetched")

	if a.cfg.Inspect {
		return a.runInspect(page)
	}

	res := extract.Fragments(page, a.cfg.Selectors, a.cfg.MaxItems)
	for _, sec := range res.Sections {
		log.Info().Str("selector", sec.Selector).Int("fragments", len(sec.Fragments)).Msg("selector extracted")
	}

	rep := report.Render(res, a.cfg.URL)
	subject := report.Subject(a.cfg.SubjectPrefix, a.now(), a.cfg.URL)

	if a.cfg.DryRun {
		a.printDryRun(subject, rep)
		return nil
	}

	if a.cfg.ArtifactDir != "" {
		if err := writeArtifacts(a.cfg.ArtifactDir, a.now(), rep); err != nil {
			log.Warn().Err(err).Str("dir", a.cfg.ArtifactDir).Msg("artifact write failed")
		}
	}

	msg := mailer.Message{
		From:    a.cfg.From,
		To:      a.cfg.To,
		Subject: subject,
		Text:    rep.Text,
		HTML:    rep.HTML,
	}
	if err := a.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver report: %w", err)
	}
	log.Info().
		Str("transport", a.transport.Name()).
		Int("recipients", len(a.cfg.To)).
		Str("subject", subject).
		Msg("report delivered")
	return nil
}

// runInspect prints a preview of what each selector matches so users
// can settle on selectors before wiring up delivery.
func (a *App) runInspect(page string) error {
	w := a.out()
	for _, sel := range a.cfg.Selectors {
		fmt.Fprintf(w, "\n--- Selector: %s ---\n", sel)
		for _, p := range extract.Inspect(page, sel, a.cfg.InspectLimit) {
			fmt.Fprintf(w, "[%d] <%s> attrs=%v\n", p.Index, p.Tag, p.Attrs)
			fmt.Fprintf(w, "text: %s\n", p.Text)
			fmt.Fprintf(w, "html: %s\n", p.HTML)
			fmt.Fprintln(w)
		}
	}
	return nil
}

// printDryRun mirrors exactly what would be sent, without touching a
// transport.
func (a *App) printDryRun(subject string, rep report.Report) {
	w := a.out()
	fmt.Fprintln(w, "--- DRY RUN: Email body below ---")
	fmt.Fprintln(w, subject)
	fmt.Fprintln(w, rep.Text)
	fmt.Fprintln(w, "--- HTML preview ---")
	fmt.Fprintln(w, rep.HTML)
	fmt.Fprintln(w, "--- END ---")
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
