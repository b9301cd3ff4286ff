// Package metadata scans the head of an HTML document for the descriptive
// fields used by SEO tags: title, description, author, dates, tags,
// Open Graph and Twitter Card properties.
package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/folio-dev/blogrender/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extract returns the metadata found in the document head. It never fails:
// malformed or missing markup leaves the corresponding fields empty.
func Extract(raw string) (meta models.Metadata) {
	meta = models.NewMetadata()
	defer func() {
		if recover() != nil {
			meta = models.NewMetadata()
		}
	}()

	if !hasHead(raw) {
		return meta
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return meta
	}

	head := doc.Find("head").First()
	if head.Length() == 0 {
		return meta
	}

	meta.Title = strings.TrimSpace(head.Find("title").First().Text())

	var tags []string
	head.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key := attr(s, "name")
		if key == "" {
			key = attr(s, "property")
		}
		value := attr(s, "content")
		if value == "" {
			value = attr(s, "value")
		}
		key = strings.ToLower(key)
		if key == "" || value == "" {
			return
		}

		switch {
		case key == "description":
			meta.Description = value
		case key == "author":
			meta.Author = value
		case key == "date":
			setOnce(&meta.PublishedTime, value)
		case key == "keywords":
			for _, kw := range strings.Split(value, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					tags = append(tags, kw)
				}
			}
		case key == "article:author":
			setOnce(&meta.Author, value)
		case key == "article:published_time", key == "article:modified_time":
			setOnce(&meta.PublishedTime, value)
		case key == "article:tag":
			tags = append(tags, value)
		case strings.HasPrefix(key, "og:"):
			meta.OpenGraph[key] = value
		case strings.HasPrefix(key, "twitter:"):
			meta.Twitter[key] = value
		}
	})

	meta.Tags = Dedupe(tags)
	return meta
}

// Dedupe trims, drops empties and removes exact duplicates while keeping
// first-seen order. The result is never nil.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func setOnce(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// hasHead reports whether raw carries an explicit <head> start tag. The
// parser synthesizes a head for every document, so the tree alone cannot
// tell.
func hasHead(raw string) bool {
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Head {
				return true
			}
		}
	}
}
