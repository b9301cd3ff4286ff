package seo

import (
	"encoding/xml"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/folio-dev/blogrender/models"
	"github.com/temoto/robotstxt"
)

func testSite() models.SiteConfig {
	site := models.DefaultConfig()
	site.SiteName = "Blog"
	return site
}

func tagValue(tags []Tag, property string) string {
	for _, t := range tags {
		if t.Property == property {
			return t.Content
		}
	}
	return ""
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		fallback string
		want     string
	}{
		{name: "fallback", fallback: "http://localhost:8080/some/path", want: "http://localhost:8080"},
		{name: "base url wins", env: map[string]string{"BASE_URL": "https://a.example/x", "SITE_URL": "https://b.example"}, want: "https://a.example"},
		{name: "site url", env: map[string]string{"SITE_URL": "https://b.example"}, want: "https://b.example"},
		{name: "vercel host gets scheme", env: map[string]string{"VERCEL_URL": "blog-abc.vercel.app"}, want: "https://blog-abc.vercel.app"},
		{name: "nothing usable", fallback: "", want: "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range baseURLEnv {
				t.Setenv(name, tt.env[name])
			}
			if got := BaseURL(tt.fallback); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalePath(t *testing.T) {
	site := testSite()
	tests := []struct {
		locale, path, want string
	}{
		{"en", "/", "/"},
		{"en", "/blog", "/blog"},
		{"pt-BR", "/", "/pt-BR"},
		{"es", "/blog/hola", "/es/blog/hola"},
		{"es", "", "/es"},
	}
	for _, tt := range tests {
		if got := LocalePath(site, tt.locale, tt.path); got != tt.want {
			t.Errorf("LocalePath(%q, %q) = %q, want %q", tt.locale, tt.path, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	site := testSite()
	meta := models.NewMetadata()
	meta.Description = "From the head"
	meta.OpenGraph["og:image"] = "https://cdn.example/cover.png"
	meta.OpenGraph["og:updated_time"] = "2025-04-01"
	meta.Twitter["twitter:site"] = "@folio"

	post := &models.Post{
		Slug:     "ola-mundo",
		Title:    "Olá mundo",
		Excerpt:  "Primeiro post",
		Date:     "2025-03-01",
		Author:   "Ana",
		Tags:     []string{"go"},
		Locale:   "pt-BR",
		Metadata: meta,
	}

	pm := Build(site, "https://blog.example", post)

	if pm.Title != "Olá mundo | Blog" {
		t.Errorf("Title = %q, want %q", pm.Title, "Olá mundo | Blog")
	}
	if pm.Description != "From the head" {
		t.Errorf("Description = %q, want extracted description", pm.Description)
	}
	if pm.Canonical != "https://blog.example/pt-BR/blog/ola-mundo" {
		t.Errorf("Canonical = %q", pm.Canonical)
	}

	wantAlts := []Alternate{
		{"en", "https://blog.example/blog/ola-mundo"},
		{"pt-BR", "https://blog.example/pt-BR/blog/ola-mundo"},
		{"es", "https://blog.example/es/blog/ola-mundo"},
		{"x-default", "https://blog.example/blog/ola-mundo"},
	}
	if !reflect.DeepEqual(pm.Alternates, wantAlts) {
		t.Errorf("Alternates = %v, want %v", pm.Alternates, wantAlts)
	}

	ogTests := map[string]string{
		"og:title":               "Olá mundo",
		"og:description":         "From the head",
		"og:url":                 pm.Canonical,
		"og:type":                "article",
		"og:locale":              "pt_BR",
		"og:image":               "https://cdn.example/cover.png",
		"og:updated_time":        "2025-04-01",
		"article:published_time": "2025-03-01",
		"article:tag":            "go",
	}
	for property, want := range ogTests {
		if got := tagValue(pm.OpenGraph, property); got != want {
			t.Errorf("OpenGraph[%s] = %q, want %q", property, got, want)
		}
	}

	twTests := map[string]string{
		"twitter:card":        "summary_large_image",
		"twitter:title":       "Olá mundo",
		"twitter:description": "From the head",
		"twitter:image":       "https://cdn.example/cover.png",
		"twitter:site":        "@folio",
	}
	for property, want := range twTests {
		if got := tagValue(pm.Twitter, property); got != want {
			t.Errorf("Twitter[%s] = %q, want %q", property, got, want)
		}
	}
}

func TestBuild_FallbacksWithoutMetadata(t *testing.T) {
	post := &models.Post{Slug: "bare", Title: "Bare", Excerpt: "Just text", Locale: "en", Metadata: models.NewMetadata()}
	pm := Build(testSite(), "https://blog.example", post)

	if pm.Description != "Just text" {
		t.Errorf("Description = %q, want excerpt", pm.Description)
	}
	if got := tagValue(pm.OpenGraph, "og:description"); got != "Just text" {
		t.Errorf("og:description = %q, want excerpt", got)
	}
	if got := tagValue(pm.Twitter, "twitter:title"); got != "Bare" {
		t.Errorf("twitter:title = %q, want post title", got)
	}
	for _, tag := range append(pm.OpenGraph, pm.Twitter...) {
		if tag.Content == "" {
			t.Errorf("empty tag %q emitted", tag.Property)
		}
		if tag.Property == "og:image" {
			t.Errorf("og:image emitted without an image")
		}
	}
	if pm.Canonical != "https://blog.example/blog/bare" {
		t.Errorf("Canonical = %q", pm.Canonical)
	}
}

func TestSitemap(t *testing.T) {
	site := testSite()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	published := models.NewMetadata()
	published.PublishedTime = "2025-02-02T08:00:00Z"
	updated := models.NewMetadata()
	updated.OpenGraph["og:updated_time"] = "2025-03-03"

	posts := map[string][]*models.Post{
		"en": {
			{Slug: "a", Date: "2025-01-01", Metadata: published},
			{Slug: "b", Date: "2025-01-01", Metadata: updated},
			{Slug: "c", Date: "2025-01-04", Metadata: models.NewMetadata()},
			{Slug: "d", Date: "whenever", Metadata: models.NewMetadata()},
		},
		"es": {
			{Slug: "hola", Date: "2025-05-05", Metadata: models.NewMetadata()},
		},
	}

	data, err := Sitemap(site, "https://blog.example", posts, now)
	if err != nil {
		t.Fatalf("Sitemap() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Errorf("Sitemap() missing XML header")
	}

	var set URLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		t.Fatalf("sitemap does not parse: %v", err)
	}

	type entry struct {
		lastMod  string
		priority float64
	}
	got := map[string]entry{}
	for _, u := range set.URLs {
		got[u.Loc] = entry{u.LastMod, u.Priority}
	}

	want := map[string]entry{
		"https://blog.example/":             {"2025-06-01T12:00:00Z", 1},
		"https://blog.example/blog":         {"2025-06-01T12:00:00Z", 0.8},
		"https://blog.example/pt-BR":        {"2025-06-01T12:00:00Z", 0.9},
		"https://blog.example/pt-BR/blog":   {"2025-06-01T12:00:00Z", 0.8},
		"https://blog.example/es":           {"2025-06-01T12:00:00Z", 0.9},
		"https://blog.example/es/blog":      {"2025-06-01T12:00:00Z", 0.8},
		"https://blog.example/blog/a":       {"2025-02-02T08:00:00Z", 0.7},
		"https://blog.example/blog/b":       {"2025-03-03T00:00:00Z", 0.7},
		"https://blog.example/blog/c":       {"2025-01-04T00:00:00Z", 0.7},
		"https://blog.example/blog/d":       {"2025-06-01T12:00:00Z", 0.7},
		"https://blog.example/es/blog/hola": {"2025-05-05T00:00:00Z", 0.7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sitemap entries = %v, want %v", got, want)
	}
	if len(set.URLs) != len(want) {
		t.Errorf("sitemap has %d URLs, want %d", len(set.URLs), len(want))
	}
}

func TestRobots(t *testing.T) {
	body := Robots("https://blog.example")

	robots, err := robotstxt.FromString(body)
	if err != nil {
		t.Fatalf("robots.txt does not parse: %v", err)
	}
	group := robots.FindGroup("*")

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/blog/hello", true},
		{"/pt-BR/blog", true},
		{"/api/blog", false},
		{"/api/revalidate", false},
		{"/metrics", false},
	}
	for _, tt := range tests {
		if got := group.Test(tt.path); got != tt.want {
			t.Errorf("robots Test(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if !reflect.DeepEqual(robots.Sitemaps, []string{"https://blog.example/sitemap.xml"}) {
		t.Errorf("robots Sitemaps = %v", robots.Sitemaps)
	}
}
