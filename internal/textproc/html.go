package textproc

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlWhitespaceRegex = regexp.MustCompile(`[^\S\n]+`)
	// Zero-width spaces and friends, common in marketing footers.
	htmlInvisibleRegex = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{2060}-\x{2064}]+`)
)

// StripHTML converts an HTML body to plain text and then strips quoted
// history from it the same way Strip does. Entities are decoded and
// block elements become line breaks so the separator scan sees the
// lines a text client would have produced.
func StripHTML(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	doc.Find("script, style, head, meta, link").Remove()

	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr, blockquote").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	text := doc.Text()
	text = htmlInvisibleRegex.ReplaceAllString(text, "")
	text = htmlWhitespaceRegex.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return Strip(strings.Join(cleaned, "\n"))
}
