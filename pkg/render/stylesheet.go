package render

import "github.com/folio-dev/blogrender/models"

const (
	// ContainerClass marks the region holding rendered third-party HTML.
	ContainerClass = "rendered-html"
	// FullWidthClass is the utility class forcing full width on the container.
	FullWidthClass = "w-full"
)

// Stylesheet re-asserts full-width layout and code block presentation
// inside the rendered region, overriding widths and fonts hardcoded by the
// embedded document.
const Stylesheet = `.rendered-html{width:100%;max-width:100%}` +
	`.rendered-html .container,.rendered-html .markdown-body{width:100%;max-width:100%;margin:0}` +
	`.rendered-html pre,.rendered-html code{font-family:ui-monospace,SFMono-Regular,Menlo,Monaco,Consolas,"Liberation Mono","Courier New",monospace}` +
	`.rendered-html pre{overflow-x:auto;padding:1rem;border-radius:.5rem;background:color-mix(in srgb,var(--bg) 92%,var(--fg) 8%)}` +
	`.rendered-html pre code{padding:0;background:transparent}`

// Container wraps transformed nodes in the rendered-html element, prefixed
// by the embedded stylesheet.
func Container(nodes []models.Node, lang, className string) *models.Element {
	classes := ContainerClass + " " + FullWidthClass
	if className != "" {
		classes += " " + className
	}

	props := models.Props{{Name: "className", Value: classes}}
	if lang != "" {
		props = append(props, models.Prop{Name: "lang", Value: lang})
	}

	children := make([]models.Node, 0, len(nodes)+1)
	children = append(children, &models.Element{
		Tag:      "style",
		Children: []models.Node{models.Text(Stylesheet)},
	})
	children = append(children, nodes...)

	return &models.Element{Tag: "div", Props: props, Children: children}
}
