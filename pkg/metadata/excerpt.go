package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptLength is the number of characters kept before truncation.
const ExcerptLength = 150

// Excerpt returns the text of the first body paragraph, or the whole body
// text when there is none, cut to ExcerptLength characters plus "...".
func Excerpt(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	body := doc.Find("body").First()
	var text string
	if p := body.Find("p").First(); p.Length() > 0 {
		text = p.Text()
	} else {
		text = bodyText(body)
	}
	return Truncate(strings.TrimSpace(text), ExcerptLength)
}

// Truncate cuts s to n characters and appends an ellipsis marker when
// anything was removed.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// bodyText is the body's visible text: script, style and template
// contents are not prose.
func bodyText(body *goquery.Selection) string {
	clone := body.Clone()
	clone.Find("script,style,noscript,template").Remove()
	return strings.Join(strings.Fields(clone.Text()), " ")
}

// Text returns the visible body text of raw with whitespace collapsed.
func Text(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	return bodyText(doc.Find("body").First())
}
