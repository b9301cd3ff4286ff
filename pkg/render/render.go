// Package render transforms loosely structured third-party HTML into a
// models.Node UI tree ready to be embedded in a page.
package render

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/textfix"
	"golang.org/x/net/html"
)

// Tags without a visual payload inside an embedded fragment.
var ignoredTags = map[string]struct{}{
	"meta":   {},
	"link":   {},
	"script": {},
	"title":  {},
	"base":   {},
}

// Document wrappers are discarded and their children promoted.
var wrapperTags = map[string]struct{}{
	"html": {},
	"head": {},
	"body": {},
}

// Transformer is safe for concurrent use; every call owns its parse tree.
type Transformer struct {
	Repairer *textfix.Repairer
	Logger   *slog.Logger
}

// New returns a Transformer with the default mis-encoding repairer.
func New(logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		Repairer: textfix.Default(),
		Logger:   logger,
	}
}

// Transform parses req.HTML and returns the wrapped UI tree, or nil when
// the input is empty or collapses to nothing.
func (t *Transformer) Transform(req models.RenderRequest) models.Node {
	nodes := t.TransformBody(req.HTML)
	if len(nodes) == 0 {
		return nil
	}
	return Container(nodes, req.Lang, req.ClassName)
}

// TransformBody returns the transformed, null-filtered top-level nodes
// without the rendered-html container.
func (t *Transformer) TransformBody(raw string) (nodes []models.Node) {
	if raw == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger().Debug("html transform aborted", "panic", r, "input_bytes", len(raw))
			nodes = nil
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.logger().Debug("html parse failed", "error", err)
		return nil
	}

	for _, root := range doc.Nodes {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.DoctypeNode {
				continue
			}
			if n := t.transformNode(c); n != nil {
				nodes = append(nodes, n)
			}
		}
	}
	return nodes
}

func (t *Transformer) transformNode(n *html.Node) models.Node {
	switch n.Type {
	case html.DoctypeNode:
		return nil
	case html.TextNode:
		return t.transformText(n)
	case html.ElementNode:
	default:
		return nil
	}

	tag := strings.ToLower(n.Data)
	if tag == "!doctype" {
		return nil
	}
	if _, ok := ignoredTags[tag]; ok {
		return nil
	}

	if _, ok := wrapperTags[tag]; ok {
		children := t.transformChildren(n)
		if len(children) == 0 {
			return nil
		}
		return models.Fragment(children)
	}

	props := t.normalizeAttributes(n.Attr)
	if tag == "img" {
		return transformImage(props)
	}
	if tag == "pre" {
		return &models.Element{Tag: tag, Props: props, Children: t.rawTextChildren(n)}
	}

	return &models.Element{
		Tag:      tag,
		Props:    props,
		Children: t.transformChildren(n),
	}
}

func (t *Transformer) transformChildren(n *html.Node) []models.Node {
	var children []models.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := t.transformNode(c); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// rawTextChildren returns the contents of n as a single text node: nested
// markup is kept as literal text and character references are decoded.
func (t *Transformer) rawTextChildren(n *html.Node) []models.Node {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			t.logger().Debug("pre render failed", "error", err)
			return nil
		}
	}
	if b.Len() == 0 {
		return nil
	}
	text := normalizeNewlines(t.repair(html.UnescapeString(b.String())))
	return []models.Node{models.Text(text)}
}

func (t *Transformer) repair(s string) string {
	if t.Repairer == nil {
		return s
	}
	return t.Repairer.Repair(s)
}

func (t *Transformer) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}
