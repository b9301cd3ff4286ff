package models

// Metadata is the descriptive record scanned from a document head.
// Empty strings mean the field was absent.
type Metadata struct {
	Title         string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Author        string            `json:"author,omitempty" yaml:"author,omitempty"`
	PublishedTime string            `json:"published_time,omitempty" yaml:"published_time,omitempty"`
	Tags          []string          `json:"tags" yaml:"tags"`
	OpenGraph     map[string]string `json:"open_graph" yaml:"open_graph"`
	Twitter       map[string]string `json:"twitter" yaml:"twitter"`
}

// NewMetadata returns an empty record with non-nil collections.
func NewMetadata() Metadata {
	return Metadata{
		Tags:      []string{},
		OpenGraph: map[string]string{},
		Twitter:   map[string]string{},
	}
}
