package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/folio-dev/blogrender/models"
	"golang.org/x/net/html"
)

// attributeNames maps HTML attribute names to their UI property names.
var attributeNames = map[string]string{
	"class":           "className",
	"for":             "htmlFor",
	"charset":         "charSet",
	"tabindex":        "tabIndex",
	"readonly":        "readOnly",
	"maxlength":       "maxLength",
	"minlength":       "minLength",
	"autocomplete":    "autoComplete",
	"autocapitalize":  "autoCapitalize",
	"contenteditable": "contentEditable",
	"spellcheck":      "spellCheck",
	"srcset":          "srcSet",
	"crossorigin":     "crossOrigin",
	"referrerpolicy":  "referrerPolicy",
	"allowfullscreen": "allowFullScreen",
	"nomodule":        "noModule",
	"playsinline":     "playsInline",
	"srcdoc":          "srcDoc",
	"http-equiv":      "httpEquiv",
	"accept-charset":  "acceptCharset",
}

// htmlNames is the inverse of attributeNames, used when serializing.
var htmlNames = func() map[string]string {
	m := make(map[string]string, len(attributeNames))
	for k, v := range attributeNames {
		m[v] = k
	}
	return m
}()

// NormalizeAttributeName maps an HTML attribute name to a UI property name.
func NormalizeAttributeName(name string) string {
	lower := strings.ToLower(name)

	if mapped, ok := attributeNames[lower]; ok {
		return mapped
	}
	if isPassthrough(lower) {
		return name
	}
	if strings.Contains(lower, "-") {
		return camelCase(lower)
	}
	return lower
}

// HTMLAttributeName maps a UI property name back to an HTML attribute name.
func HTMLAttributeName(prop string) string {
	if name, ok := htmlNames[prop]; ok {
		return name
	}
	if isPassthrough(strings.ToLower(prop)) {
		return prop
	}
	return models.KebabCase(prop)
}

func isPassthrough(lower string) bool {
	return strings.HasPrefix(lower, "data-") || strings.HasPrefix(lower, "aria-")
}

// camelCase splits on '-' and upper-cases the first letter of every
// segment after the first: stroke-width -> strokeWidth.
func camelCase(s string) string {
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		if r == utf8.RuneError {
			b.WriteString(part)
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

func (t *Transformer) normalizeAttributes(attrs []html.Attribute) models.Props {
	props := make(models.Props, 0, len(attrs))
	for _, a := range attrs {
		raw := a.Key
		if a.Namespace != "" {
			raw = a.Namespace + ":" + a.Key
		}
		name := NormalizeAttributeName(raw)

		var value any = true
		if a.Val != "" {
			value = t.repair(a.Val)
		}

		if s, ok := value.(string); ok && name == "style" {
			value = ParseStyle(s)
		}

		props.Set(name, value)
	}
	return props
}

// ParseStyle parses an inline style attribute into a Style record.
// Malformed declarations are skipped; later declarations win.
func ParseStyle(style string) models.Style {
	var out models.Style
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		property, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		property = strings.TrimSpace(property)
		value = strings.TrimSpace(value)
		if property == "" || value == "" {
			continue
		}
		out.Set(cssPropertyName(property), value)
	}
	return out
}

func cssPropertyName(property string) string {
	// custom properties are case sensitive and keep their dashes
	if strings.HasPrefix(property, "--") {
		return property
	}
	return camelCase(property)
}
