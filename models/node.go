package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Node is a UI node produced by the HTML transformer.
// A nil Node is the null node: it contributes nothing to output.
// The concrete types are Text, *Element, *Image and Fragment.
type Node interface {
	isNode()
}

// Text is a plain string rendered verbatim.
type Text string

// Element is a generic element with normalized properties.
type Element struct {
	Tag      string
	Props    Props
	Children []Node
}

// Image is the specialized img element. Attrs only ever holds the
// passthrough allow-list: title, id, role, data-* and aria-*.
type Image struct {
	Src       string
	Alt       string
	Width     int
	Height    int
	ClassName string
	Style     Style
	Sizes     string
	Priority  bool
	Loading   string // "lazy" or empty
	Attrs     Props
}

// Fragment is an ordered group of nodes with no enclosing element.
type Fragment []Node

func (Text) isNode()     {}
func (*Element) isNode() {}
func (*Image) isNode()   {}
func (Fragment) isNode() {}

// Prop is a single normalized property. Value is a string, a bool (a
// flag attribute that was present with an empty value) or a Style.
type Prop struct {
	Name  string
	Value any
}

// Props is an ordered property mapping.
type Props []Prop

// Get returns the value stored under name.
func (p Props) Get(name string) (any, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// String returns the value under name when it is a string.
func (p Props) String(name string) (string, bool) {
	v, ok := p.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under name, overwriting an existing entry in place.
func (p *Props) Set(name string, value any) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Prop{Name: name, Value: value})
}

// Delete removes name and returns the value it held.
func (p *Props) Delete(name string) (any, bool) {
	for i, prop := range *p {
		if prop.Name == name {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return prop.Value, true
		}
	}
	return nil, false
}

// MarshalJSON keeps the property order of the source markup.
func (p Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Declaration is one CSS property/value pair with a camel-cased property.
type Declaration struct {
	Property string
	Value    string
}

// Style is a structured style record in declaration order.
type Style []Declaration

// Get returns the value of property.
func (s Style) Get(property string) (string, bool) {
	for _, d := range s {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

// Set stores a declaration. A later declaration for the same property
// replaces the earlier one.
func (s *Style) Set(property, value string) {
	for i := range *s {
		if (*s)[i].Property == property {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, Declaration{Property: property, Value: value})
}

// CSS serializes the record back into an inline style attribute value.
func (s Style) CSS() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, KebabCase(d.Property)+":"+d.Value)
	}
	return strings.Join(parts, ";")
}

// MarshalJSON keeps declaration order.
func (s Style) MarshalJSON() ([]byte, error) {
	props := make(Props, 0, len(s))
	for _, d := range s {
		props = append(props, Prop{Name: d.Property, Value: d.Value})
	}
	return props.MarshalJSON()
}

// KebabCase reverses camel-casing: fontSize -> font-size,
// WebkitTransition -> -webkit-transition. Custom properties are kept.
func KebabCase(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"text", string(t)})
}

func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Tag      string `json:"tag"`
		Props    Props  `json:"props"`
		Children []Node `json:"children"`
	}{"element", e.Tag, e.Props, nonNilNodes(e.Children)})
}

func (img *Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Src       string `json:"src"`
		Alt       string `json:"alt"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		ClassName string `json:"className,omitempty"`
		Style     Style  `json:"style,omitempty"`
		Sizes     string `json:"sizes,omitempty"`
		Priority  bool   `json:"priority,omitempty"`
		Loading   string `json:"loading,omitempty"`
		Attrs     Props  `json:"attrs,omitempty"`
	}{"image", img.Src, img.Alt, img.Width, img.Height, img.ClassName, img.Style, img.Sizes, img.Priority, img.Loading, img.Attrs})
}

func (f Fragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Children []Node `json:"children"`
	}{"fragment", nonNilNodes(f)})
}

func nonNilNodes(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}
