package models

import "time"

// Post is a blog post resolved for one locale.
type Post struct {
	Slug     string    `json:"slug" yaml:"slug"`
	Title    string    `json:"title" yaml:"title"`
	Excerpt  string    `json:"excerpt" yaml:"excerpt"`
	Date     string    `json:"date" yaml:"date"`
	Author   string    `json:"author" yaml:"author"`
	Tags     []string  `json:"tags" yaml:"tags"`
	Content  string    `json:"content,omitempty" yaml:"-"`
	Locale   string    `json:"locale" yaml:"locale"`
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	SiteName string    `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	Image    string    `json:"image,omitempty" yaml:"image,omitempty"`
	Stats    PostStats `json:"stats" yaml:"stats"`

	// PublishedAt is Date parsed; zero when the date could not be parsed.
	PublishedAt time.Time `json:"-" yaml:"-"`
}

// PostStats carries the reading statistics computed at index time.
type PostStats struct {
	WordCount        int      `json:"word_count" yaml:"word_count"`
	EstimatedReadMin float64  `json:"estimated_read_min" yaml:"estimated_read_min"`
	Language         string   `json:"language,omitempty" yaml:"language,omitempty"`
	TopKeywords      []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}
