package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Match is one element selected from a fragment.
type Match struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

// Select returns the elements of fragment matching a CSS selector. A
// selector that does not compile matches nothing.
func Select(fragment, selector string) ([]Match, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var matches []Match
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		h, herr := goquery.OuterHtml(s)
		if herr != nil {
			return
		}
		matches = append(matches, Match{HTML: h, Text: s.Text()})
	})
	return matches, nil
}

// XPath returns the elements of fragment matching an XPath expression.
func XPath(fragment, expr string) ([]Match, error) {
	doc, err := htmlquery.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	nodes, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	matches := make([]Match, 0, len(nodes))
	for _, n := range nodes {
		matches = append(matches, Match{
			HTML: htmlquery.OutputHTML(n, true),
			Text: htmlquery.InnerText(n),
		})
	}
	return matches, nil
}
