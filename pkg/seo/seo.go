// Package seo derives page-level metadata, the sitemap and robots.txt from
// the site configuration and the posts' extracted head metadata.
package seo

import (
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/folio-dev/blogrender/models"
)

// Tag is one <meta> property/content pair.
type Tag struct {
	Property string `json:"property"`
	Content  string `json:"content"`
}

// Alternate is a localized version of a page (<link rel="alternate" hreflang>).
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// PageMeta is everything a page layout needs for its <head>.
type PageMeta struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Canonical   string      `json:"canonical"`
	Lang        string      `json:"lang"`
	Alternates  []Alternate `json:"alternates"`
	OpenGraph   []Tag       `json:"open_graph"`
	Twitter     []Tag       `json:"twitter"`
}

// baseURLEnv is checked in order by BaseURL.
var baseURLEnv = []string{"BASE_URL", "SITE_URL", "VERCEL_URL"}

// BaseURL returns the site origin from the environment, falling back to
// fallback. Hosts without a scheme get https://.
func BaseURL(fallback string) string {
	for _, name := range baseURLEnv {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			if origin, ok := origin(v); ok {
				return origin
			}
		}
	}
	if origin, ok := origin(fallback); ok {
		return origin
	}
	return "http://localhost:8080"
}

func origin(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

// LocalePath prefixes path with the locale, except for the default locale.
func LocalePath(site models.SiteConfig, locale, path string) string {
	if path == "" {
		path = "/"
	}
	if locale == site.DefaultLocale {
		return path
	}
	if path == "/" {
		return "/" + locale
	}
	return "/" + locale + path
}

// PostPath is the path of a post page.
func PostPath(site models.SiteConfig, locale, slug string) string {
	return LocalePath(site, locale, "/blog/"+slug)
}

// Build maps a post onto page metadata. Each Open Graph and Twitter field
// uses the extracted value when present, then the post's own title,
// excerpt or image.
func Build(site models.SiteConfig, baseURL string, post *models.Post) PageMeta {
	meta := post.Metadata
	canonical := baseURL + PostPath(site, post.Locale, post.Slug)

	description := first(meta.Description, post.Excerpt)
	pm := PageMeta{
		Title:       post.Title + " | " + siteName(site),
		Description: description,
		Canonical:   canonical,
		Lang:        post.Locale,
		Alternates:  alternates(site, baseURL, "/blog/"+post.Slug),
	}

	og := meta.OpenGraph
	ogTitle := first(og["og:title"], post.Title)
	ogDescription := first(og["og:description"], description)
	ogImage := first(og["og:image"], post.Image)

	pm.OpenGraph = []Tag{
		{"og:title", ogTitle},
		{"og:description", ogDescription},
		{"og:url", first(og["og:url"], canonical)},
		{"og:type", first(og["og:type"], "article")},
		{"og:site_name", first(og["og:site_name"], post.SiteName, siteName(site))},
		{"og:locale", first(og["og:locale"], strings.ReplaceAll(post.Locale, "-", "_"))},
		{"og:image", ogImage},
		{"article:published_time", first(meta.PublishedTime, post.Date)},
		{"article:author", post.Author},
	}
	for _, tag := range post.Tags {
		pm.OpenGraph = append(pm.OpenGraph, Tag{"article:tag", tag})
	}
	pm.OpenGraph = appendRest(pm.OpenGraph, og)

	tw := meta.Twitter
	pm.Twitter = []Tag{
		{"twitter:card", first(tw["twitter:card"], site.TwitterCard, "summary")},
		{"twitter:title", first(tw["twitter:title"], ogTitle)},
		{"twitter:description", first(tw["twitter:description"], ogDescription)},
		{"twitter:image", first(tw["twitter:image"], ogImage)},
	}
	pm.Twitter = appendRest(pm.Twitter, tw)

	pm.OpenGraph = dropEmpty(pm.OpenGraph)
	pm.Twitter = dropEmpty(pm.Twitter)
	return pm
}

// Listing returns page metadata for a locale's post index.
func Listing(site models.SiteConfig, baseURL, locale string) PageMeta {
	canonical := baseURL + LocalePath(site, locale, "/blog")
	return PageMeta{
		Title:      siteName(site),
		Canonical:  canonical,
		Lang:       locale,
		Alternates: alternates(site, baseURL, "/blog"),
		OpenGraph: []Tag{
			{"og:title", siteName(site)},
			{"og:url", canonical},
			{"og:type", "website"},
			{"og:locale", strings.ReplaceAll(locale, "-", "_")},
		},
		Twitter: []Tag{
			{"twitter:card", first(site.TwitterCard, "summary")},
			{"twitter:title", siteName(site)},
		},
	}
}

// NotFound is the metadata of a missing post page.
func NotFound(locale string) PageMeta {
	return PageMeta{Title: "Post Not Found", Lang: locale}
}

func alternates(site models.SiteConfig, baseURL, path string) []Alternate {
	alts := make([]Alternate, 0, len(site.Locales)+1)
	for _, locale := range site.Locales {
		alts = append(alts, Alternate{Hreflang: locale, Href: baseURL + LocalePath(site, locale, path)})
	}
	alts = append(alts, Alternate{Hreflang: "x-default", Href: baseURL + LocalePath(site, site.DefaultLocale, path)})
	return alts
}

// appendRest adds the extracted properties not already emitted, sorted.
func appendRest(tags []Tag, extracted map[string]string) []Tag {
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		seen[t.Property] = struct{}{}
	}
	keys := make([]string, 0, len(extracted))
	for k := range extracted {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		tags = append(tags, Tag{k, extracted[k]})
	}
	return tags
}

func dropEmpty(tags []Tag) []Tag {
	out := tags[:0]
	for _, t := range tags {
		if t.Content != "" {
			out = append(out, t)
		}
	}
	return out
}

func siteName(site models.SiteConfig) string {
	return first(site.SiteName, "Blog")
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
