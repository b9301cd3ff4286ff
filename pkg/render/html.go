package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/folio-dev/blogrender/models"
	g "maragu.dev/gomponents"
)

// Elements whose text children are emitted unescaped.
var rawTextTags = map[string]struct{}{
	"style": {},
}

// ToGomponents converts a UI tree into a gomponents node so it can be
// composed into server-rendered pages. A nil node renders nothing.
func ToGomponents(n models.Node) g.Node {
	switch v := n.(type) {
	case nil:
		return g.Group(nil)
	case models.Text:
		return g.Text(string(v))
	case models.Fragment:
		return g.Group(toGomponentsAll(v))
	case *models.Element:
		return elementNode(v)
	case *models.Image:
		return imageNode(v)
	default:
		return g.Group(nil)
	}
}

// HTML serializes a UI tree to an HTML string.
func HTML(n models.Node) (string, error) {
	var b strings.Builder
	if err := ToGomponents(n).Render(&b); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return b.String(), nil
}

func toGomponentsAll(nodes []models.Node) []g.Node {
	out := make([]g.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ToGomponents(n))
	}
	return out
}

func elementNode(e *models.Element) g.Node {
	children := make([]g.Node, 0, len(e.Props)+len(e.Children))
	children = append(children, propAttrs(e.Props)...)

	if _, raw := rawTextTags[e.Tag]; raw {
		for _, c := range e.Children {
			if text, ok := c.(models.Text); ok {
				children = append(children, g.Raw(string(text)))
			}
		}
		return g.El(e.Tag, children...)
	}

	children = append(children, toGomponentsAll(e.Children)...)
	return g.El(e.Tag, children...)
}

func imageNode(img *models.Image) g.Node {
	attrs := []g.Node{
		g.Attr("src", img.Src),
		g.Attr("alt", img.Alt),
		g.Attr("width", strconv.Itoa(img.Width)),
		g.Attr("height", strconv.Itoa(img.Height)),
	}
	if img.ClassName != "" {
		attrs = append(attrs, g.Attr("class", img.ClassName))
	}
	if len(img.Style) > 0 {
		attrs = append(attrs, g.Attr("style", img.Style.CSS()))
	}
	if img.Sizes != "" {
		attrs = append(attrs, g.Attr("sizes", img.Sizes))
	}
	switch {
	case img.Priority:
		attrs = append(attrs, g.Attr("loading", "eager"), g.Attr("fetchpriority", "high"))
	case img.Loading != "":
		attrs = append(attrs, g.Attr("loading", img.Loading))
	}
	attrs = append(attrs, propAttrs(img.Attrs)...)
	return g.El("img", attrs...)
}

func propAttrs(props models.Props) []g.Node {
	attrs := make([]g.Node, 0, len(props))
	for _, p := range props {
		name := HTMLAttributeName(p.Name)
		switch v := p.Value.(type) {
		case string:
			attrs = append(attrs, g.Attr(name, v))
		case bool:
			if v {
				attrs = append(attrs, g.Attr(name))
			}
		case models.Style:
			if len(v) > 0 {
				attrs = append(attrs, g.Attr(name, v.CSS()))
			}
		case nil:
		default:
			attrs = append(attrs, g.Attr(name, fmt.Sprint(v)))
		}
	}
	return attrs
}

// Shell renders e's tag and properties around the given children instead
// of e's own, for callers that post-process the content.
func Shell(e *models.Element, children ...g.Node) g.Node {
	nodes := append(propAttrs(e.Props), children...)
	return g.El(e.Tag, nodes...)
}
