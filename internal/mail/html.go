package mail

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML converts an HTML email body to normalized plain text.
// Script, style, and hidden preheader content are dropped; block elements
// become line breaks so the classifier sees readable sentences instead of
// a single run-on line.
func StripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, head, noscript").Remove()

	// Marketing emails hide preview text in zero-size or hidden spans.
	doc.Find("[style*='display:none'], [style*='display: none']").Remove()

	var sb strings.Builder
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		// Insert breaks after block elements before flattening to text.
		body.Find("p, div, br, li, tr, h1, h2, h3, h4").AfterHtml("\n")
		sb.WriteString(body.Text())
	})

	text := sb.String()
	if text == "" {
		// Fragment without a <body> wrapper.
		text = doc.Text()
	}

	return NormalizeText(text), nil
}
