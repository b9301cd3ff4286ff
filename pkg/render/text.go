package render

import (
	"strings"

	"github.com/folio-dev/blogrender/models"
	"golang.org/x/net/html"
)

// Ancestors inside which whitespace is significant.
var preformattedTags = map[string]struct{}{
	"pre":  {},
	"code": {},
	"samp": {},
	"kbd":  {},
}

// Parents whose whitespace-only text children are layout noise.
var tableTags = map[string]struct{}{
	"table":    {},
	"thead":    {},
	"tbody":    {},
	"tfoot":    {},
	"tr":       {},
	"colgroup": {},
}

const nbsp = "\u00a0"

func (t *Transformer) transformText(n *html.Node) models.Node {
	text := t.repair(n.Data)

	if inPreformatted(n) {
		return models.Text(normalizeNewlines(text))
	}

	if strings.TrimSpace(text) != "" {
		return models.Text(text)
	}

	if p := n.Parent; p != nil && p.Type == html.ElementNode {
		if _, ok := tableTags[strings.ToLower(p.Data)]; ok {
			return nil
		}
	}

	return collapseWhitespace(text)
}

// collapseWhitespace reduces whitespace-only text to the single most
// significant character it contains.
func collapseWhitespace(text string) models.Node {
	switch {
	case strings.Contains(text, nbsp):
		return models.Text(nbsp)
	case strings.Contains(text, " "):
		return models.Text(" ")
	case strings.Contains(text, "\n"):
		return models.Text("\n")
	default:
		return nil
	}
}

func inPreformatted(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if _, ok := preformattedTags[strings.ToLower(p.Data)]; ok {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
