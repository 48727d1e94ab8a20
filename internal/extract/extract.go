package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// defaultSelector stands in when no selectors are configured.
const defaultSelector = "body"

// Section holds the fragments one selector produced.
type Section struct {
	Selector  string
	Fragments []string
}

// Result is the outcome of applying every selector to one page: one
// section per selector, in the order the selectors were given.
type Result struct {
	Sections []Section
}

// Empty reports whether no selector extracted anything.
func (r Result) Empty() bool {
	for _, s := range r.Sections {
		if len(s.Fragments) > 0 {
			return false
		}
	}
	return true
}

// Selectors returns the applied selectors in order.
func (r Result) Selectors() []string {
	out := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		out[i] = s.Selector
	}
	return out
}

// Total counts fragments across all sections.
func (r Result) Total() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Fragments)
	}
	return n
}

// Fragments parses content once and applies each selector to it in order.
// Each selector receives an equal share of maxItems (integer division;
// the remainder is dropped). The function is total: unparseable content
// and selectors that match nothing yield empty sections, never errors.
func Fragments(content string, selectors []string, maxItems int) Result {
	if len(selectors) == 0 {
		selectors = []string{defaultSelector}
	}
	sections := make([]Section, len(selectors))
	for i, sel := range selectors {
		sections[i] = Section{Selector: sel}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return Result{Sections: sections}
	}
	budget := maxItems / len(selectors)
	for i, sel := range selectors {
		sections[i].Fragments = matchFragments(doc, sel, budget)
	}
	return Result{Sections: sections}
}

func matchFragments(doc *goquery.Document, selector string, budget int) []string {
	flags := FlagsFor(selector)
	var frags []string
	doc.Find(selector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if len(frags) >= budget {
			return false
		}
		switch {
		case goquery.NodeName(node) == "tr":
			if row, ok := rowFragment(node); ok {
				frags = append(frags, row)
			}
		case isTabular(node):
			node.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
				if len(frags) >= budget {
					return false
				}
				if r, ok := rowFragment(row); ok {
					frags = append(frags, r)
				}
				return true
			})
		default:
			if frag, ok := textFragment(node, flags.SuppressLinks); ok {
				frags = append(frags, frag)
			}
		}
		return true
	})
	return frags
}

// rowFragment flattens a table row into one pipe-delimited line. Rows
// without cells produce nothing and must not count against the budget.
func rowFragment(row *goquery.Selection) (string, bool) {
	cells := row.Find("td, th")
	if cells.Length() == 0 {
		return "", false
	}
	parts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		parts = append(parts, nodeText(cell))
	})
	return strings.Join(parts, " | "), true
}

// textFragment shapes an ordinary node: its normalized text, annotated
// with the node's link target unless the selector suppresses links.
// Nodes with neither text nor link produce nothing and must not count
// against the budget.
func textFragment(node *goquery.Selection, suppressLinks bool) (string, bool) {
	text := nodeText(node)
	if suppressLinks {
		if text == "" {
			return "", false
		}
		return text, true
	}
	if href := linkTarget(node); href != "" {
		return text + " — " + href, true
	}
	if text == "" {
		return "", false
	}
	return text, true
}

// linkTarget is the node's own href when the node is an anchor, else the
// href of its first descendant anchor. Only that first anchor is
// consulted; an empty href counts as no link.
func linkTarget(node *goquery.Selection) string {
	if goquery.NodeName(node) == "a" {
		if href, ok := node.Attr("href"); ok && href != "" {
			return href
		}
	}
	if href, ok := node.Find("a").First().Attr("href"); ok && href != "" {
		return href
	}
	return ""
}

// isTabular reports whether the node should be walked row by row: the
// table container tags, plus anything that holds a tr somewhere below.
func isTabular(node *goquery.Selection) bool {
	switch goquery.NodeName(node) {
	case "table", "tbody", "thead":
		return true
	}
	return node.Find("tr").Length() > 0
}

// nodeText collapses whitespace runs in the selection's text to single
// spaces and trims the ends, so fragments stay single-line.
func nodeText(node *goquery.Selection) string {
	return strings.Join(strings.Fields(node.Text()), " ")
}
