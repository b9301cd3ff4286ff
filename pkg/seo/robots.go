package seo

import "strings"

// DisallowedPaths are kept out of crawlers' reach.
var DisallowedPaths = []string{"/api", "/metrics"}

// Robots renders robots.txt for baseURL.
func Robots(baseURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range DisallowedPaths {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + baseURL + "/sitemap.xml\n")
	b.WriteString("Host: " + baseURL + "\n")
	return b.String()
}
