package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pagemail/pagemail/internal/extract"
)

// Report holds the two deliverable bodies rendered from one extraction.
// Text suits terminals and plain-text mail parts; HTML is a standalone
// responsive document for mail clients.
type Report struct {
	Text string
	HTML string
}

// Render builds both bodies. Rendering is total: any extraction result,
// including an entirely empty one, produces a usable report.
func Render(res extract.Result, sourceURL string) Report {
	return Report{
		Text: renderText(res, sourceURL),
		HTML: renderHTML(res, sourceURL),
	}
}

// Subject formats the one-line email subject for a run.
func Subject(prefix string, now time.Time, sourceURL string) string {
	return fmt.Sprintf("%s (%s): %s", prefix, now.Format("2006-01-02"), sourceURL)
}

func renderText(res extract.Result, sourceURL string) string {
	if res.Empty() {
		return fmt.Sprintf("No results found when scraping %s with selector '%s'.",
			sourceURL, strings.Join(res.Selectors(), ", "))
	}
	lines := []string{"Results from " + sourceURL, strings.Repeat("-", 40)}
	first := true
	for _, sec := range res.Sections {
		if len(sec.Fragments) == 0 {
			continue
		}
		if !first {
			lines = append(lines, strings.Repeat("-", 20)+" "+sec.Selector+" "+strings.Repeat("-", 20))
		}
		first = false
		lines = append(lines, sec.Fragments...)
	}
	lines = append(lines, strings.Repeat("-", 40))
	return strings.Join(lines, "\n")
}

// digestCSS keeps the document readable in mail clients and collapses
// tables into stacked blocks on narrow screens.
const digestCSS = "body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial; " +
	"color: #111; margin:0; padding:16px; }" +
	"table { width:100%; border-collapse: collapse; margin-bottom:18px; }" +
	"th, td { text-align:left; padding:8px; border-bottom:1px solid #eee; font-size:14px; }" +
	"th { background:#f6f6f6; font-weight:600; }" +
	"@media only screen and (max-width:600px) { td, th { display:block; width:100%; box-sizing:border-box; }" +
	"table { display:block; } }"

const digestShell = `
<html>
    <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <style>%s</style>
    </head>
    <body>
    <h2 style="margin-top:0">Results from %s</h2>
    %s
    <p style="color:#666;font-size:12px">Sent by pagemail</p>
    </body>
</html>
`

func renderHTML(res extract.Result, sourceURL string) string {
	var tables strings.Builder
	for _, sec := range res.Sections {
		tables.WriteString(sectionTable(sec))
	}
	return fmt.Sprintf(digestShell, digestCSS, html.EscapeString(sourceURL), tables.String())
}

// sectionTable renders one selector's fragments as a table, with the
// selector's display title above it when there is one.
func sectionTable(sec extract.Section) string {
	flags := extract.FlagsFor(sec.Selector)

	// A first fragment that splits into cells with any letters in them
	// is taken as the header row, unless the selector opts out. A header
	// emptied by the column drop is no header at all.
	var header []string
	if len(sec.Fragments) > 0 && !flags.SuppressHeader {
		if first := sec.Fragments[0]; strings.Contains(first, " | ") {
			parts := splitCells(first)
			if anyASCIILetter(parts) {
				header = parts
				if flags.DropLastColumn && len(header) > 0 {
					header = header[:len(header)-1]
				}
				if len(header) == 0 {
					header = nil
				}
			}
		}
	}

	var rows strings.Builder
	for i, frag := range sec.Fragments {
		if header != nil && i == 0 {
			continue
		}
		if strings.Contains(frag, " | ") {
			parts := splitCells(frag)
			if flags.DropLastColumn && len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
			rows.WriteString("<tr>")
			for j, p := range parts {
				if j == 0 {
					rows.WriteString("<td><strong>" + html.EscapeString(p) + "</strong></td>")
				} else {
					rows.WriteString("<td>" + html.EscapeString(p) + "</td>")
				}
			}
			rows.WriteString("</tr>")
		} else {
			rows.WriteString("<tr><td><strong>" + html.EscapeString(frag) + "</strong></td></tr>")
		}
	}

	var b strings.Builder
	if flags.Title != "" {
		b.WriteString("<h3 style='margin:10px 0 6px 0'>" + html.EscapeString(flags.Title) + "</h3>")
	}
	b.WriteString("<table role='presentation'>")
	if header != nil {
		b.WriteString("<tr>")
		for _, h := range header {
			b.WriteString("<th>" + html.EscapeString(h) + "</th>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString(rows.String())
	b.WriteString("</table>")
	return b.String()
}

func splitCells(frag string) []string {
	parts := strings.Split(frag, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func anyASCIILetter(parts []string) bool {
	for _, p := range parts {
		if strings.ContainsFunc(p, func(r rune) bool {
			return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
		}) {
			return true
		}
	}
	return false
}
