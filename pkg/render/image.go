package render

import (
	"strconv"
	"strings"

	"github.com/folio-dev/blogrender/models"
)

// Placeholder dimensions reserve layout space when the source omits them.
const (
	DefaultImageWidth  = 800
	DefaultImageHeight = 600
)

func transformImage(props models.Props) models.Node {
	className, _ := props.Delete("className")
	style, _ := props.Delete("style")
	src, _ := props.Delete("src")
	alt, _ := props.Delete("alt")
	width, _ := props.Delete("width")
	height, _ := props.Delete("height")
	loading, _ := props.Delete("loading")
	sizes, _ := props.Delete("sizes")

	source, ok := src.(string)
	if !ok || source == "" {
		return nil
	}

	img := &models.Image{
		Src:    source,
		Width:  dimension(width, DefaultImageWidth),
		Height: dimension(height, DefaultImageHeight),
	}
	if s, ok := alt.(string); ok {
		img.Alt = s
	}
	if s, ok := className.(string); ok {
		img.ClassName = s
	}
	if s, ok := style.(models.Style); ok {
		img.Style = s
	}
	if s, ok := sizes.(string); ok && s != "" {
		img.Sizes = s
	}

	switch loading {
	case "eager":
		img.Priority = true
	case "lazy":
		img.Loading = "lazy"
	}

	for _, p := range props {
		if allowedImageAttr(p) {
			img.Attrs = append(img.Attrs, p)
		}
	}
	return img
}

// allowedImageAttr is an allow-list: anything not named here is dropped.
func allowedImageAttr(p models.Prop) bool {
	switch p.Name {
	case "title", "id", "role":
		_, ok := p.Value.(string)
		return ok
	}
	lower := strings.ToLower(p.Name)
	return strings.HasPrefix(lower, "data-") || strings.HasPrefix(lower, "aria-")
}

// dimension reads a width/height value the way parseInt does: leading
// digits win, anything unparseable falls back.
func dimension(v any, fallback int) int {
	switch d := v.(type) {
	case int:
		if d >= 0 {
			return d
		}
	case float64:
		if d >= 0 {
			return int(d)
		}
	case string:
		if n, ok := leadingInt(d); ok && n >= 0 {
			return n
		}
	}
	return fallback
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
