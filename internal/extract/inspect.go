package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	textSnippetRunes = 200
	htmlSnippetRunes = 400
)

// NodePreview summarizes one matched node for selector tuning.
type NodePreview struct {
	Index int
	Tag   string
	Attrs map[string]string
	Text  string
	HTML  string
}

// Inspect returns previews of up to limit nodes matching selector, in
// document order. It shares the extractor's matching and text
// normalization but none of its fragment shaping.
func Inspect(content, selector string, limit int) []NodePreview {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	var previews []NodePreview
	doc.Find(selector).EachWithBreak(func(i int, node *goquery.Selection) bool {
		if len(previews) >= limit {
			return false
		}
		markup, _ := goquery.OuterHtml(node)
		previews = append(previews, NodePreview{
			Index: i,
			Tag:   goquery.NodeName(node),
			Attrs: nodeAttrs(node),
			Text:  snippet(nodeText(node), textSnippetRunes),
			HTML:  snippet(markup, htmlSnippetRunes),
		})
		return true
	})
	return previews
}

func nodeAttrs(node *goquery.Selection) map[string]string {
	if len(node.Nodes) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(node.Nodes[0].Attr))
	for _, a := range node.Nodes[0].Attr {
		if _, ok := attrs[a.Key]; !ok {
			attrs[a.Key] = a.Val
		}
	}
	return attrs
}

// snippet truncates s to max runes, marking the cut with an ellipsis.
func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
