package seo

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/metadata"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority"`
}

// Entries lists the sitemap URLs: home and blog index per locale, then
// one entry per post.
func Entries(site models.SiteConfig, baseURL string, postsByLocale map[string][]*models.Post, now time.Time) []SitemapURL {
	lastMod := now.UTC().Format(time.RFC3339)

	var urls []SitemapURL
	for _, locale := range site.Locales {
		priority := 0.9
		if locale == site.DefaultLocale {
			priority = 1
		}
		urls = append(urls,
			SitemapURL{Loc: baseURL + LocalePath(site, locale, "/"), LastMod: lastMod, ChangeFreq: "weekly", Priority: priority},
			SitemapURL{Loc: baseURL + LocalePath(site, locale, "/blog"), LastMod: lastMod, ChangeFreq: "weekly", Priority: 0.8},
		)
	}

	for _, locale := range site.Locales {
		for _, post := range postsByLocale[locale] {
			urls = append(urls, SitemapURL{
				Loc:        baseURL + PostPath(site, locale, post.Slug),
				LastMod:    PostLastModified(post, now).UTC().Format(time.RFC3339),
				ChangeFreq: "weekly",
				Priority:   0.7,
			})
		}
	}
	return urls
}

// PostLastModified picks the first parseable of the published time,
// og:updated_time and the post date, else now.
func PostLastModified(post *models.Post, now time.Time) time.Time {
	for _, candidate := range []string{
		post.Metadata.PublishedTime,
		post.Metadata.OpenGraph["og:updated_time"],
		post.Date,
	} {
		if t, ok := metadata.ParseDate(candidate); ok {
			return t
		}
	}
	return now
}

// Sitemap renders the sitemap XML document.
func Sitemap(site models.SiteConfig, baseURL string, postsByLocale map[string][]*models.Post, now time.Time) ([]byte, error) {
	set := URLSet{XMLNS: sitemapNS, URLs: Entries(site, baseURL, postsByLocale, now)}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
