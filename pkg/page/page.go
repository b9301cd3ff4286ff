// Package page lays rendered posts and listings out as complete HTML
// documents.
package page

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/render"
	"github.com/folio-dev/blogrender/pkg/seo"
	"github.com/microcosm-cc/bluemonday"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

type Renderer struct {
	Site    models.SiteConfig
	BaseURL string

	policy *bluemonday.Policy
}

// New returns a page renderer. Post bodies are sanitized when
// site.Sanitize is set.
func New(site models.SiteConfig, baseURL string) *Renderer {
	r := &Renderer{Site: site, BaseURL: baseURL}
	if site.Sanitize {
		r.policy = Policy()
	}
	return r
}

// Policy is the sanitizer applied to post bodies: user generated content
// rules plus the presentational attributes the transformer keeps.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id", "lang", "title", "role", "style").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("aria-label", "aria-hidden", "aria-describedby").Globally()
	p.AllowAttrs("loading", "fetchpriority", "sizes", "width", "height").OnElements("img")
	return p
}

// Post renders a post page around body, the transformed UI tree.
func (r *Renderer) Post(meta seo.PageMeta, post *models.Post, body models.Node) ([]byte, error) {
	path := "/blog/" + post.Slug
	return r.document(meta, post.Locale, path,
		html.Article(html.Class("prose prose-lg max-w-none"),
			html.Header(html.Class("mb-8"),
				html.H1(html.Class("text-4xl font-bold mb-4"), g.Text(post.Title)),
				html.Div(html.Class("flex items-center gap-4 text-sm text-muted-foreground mb-6"),
					g.If(post.Author != "", html.Span(g.Text(post.Author))),
					g.If(post.Author != "" && post.Date != "", html.Span(g.Text("•"))),
					g.If(post.Date != "", html.Time(html.DateTime(post.Date), g.Text(FormatDate(post, post.Locale)))),
				),
				g.If(len(post.Tags) > 0, html.Ul(html.Class("tags"),
					g.Map(post.Tags, func(tag string) g.Node {
						return html.Li(g.Text(tag))
					}),
				)),
			),
			r.content(body),
		),
	)
}

// Index renders a locale's post listing.
func (r *Renderer) Index(meta seo.PageMeta, locale string, posts []*models.Post) ([]byte, error) {
	return r.document(meta, locale, "/blog",
		html.H1(html.Class("text-4xl font-bold mb-8"), g.Text(meta.Title)),
		g.If(len(posts) == 0, html.P(g.Text(noPosts(locale)))),
		html.Ul(html.Class("space-y-8"),
			g.Map(posts, func(p *models.Post) g.Node {
				return html.Li(
					html.H2(html.A(html.Href(seo.PostPath(r.Site, locale, p.Slug)), g.Text(p.Title))),
					g.If(p.Date != "", html.Time(html.DateTime(p.Date), g.Text(FormatDate(p, locale)))),
					g.If(p.Excerpt != "", html.P(g.Text(p.Excerpt))),
				)
			}),
		),
	)
}

// NotFound renders the missing-post page.
func (r *Renderer) NotFound(locale string) ([]byte, error) {
	return r.document(seo.NotFound(locale), locale, "/blog",
		html.H1(g.Text("Post Not Found")),
		html.P(html.A(html.Href(seo.LocalePath(r.Site, locale, "/blog")), g.Text("← Blog"))),
	)
}

func (r *Renderer) content(body models.Node) g.Node {
	if r.policy == nil {
		return render.ToGomponents(body)
	}

	// the container and its stylesheet are ours; only the transformed
	// content goes through the sanitizer
	container, ok := body.(*models.Element)
	if !ok || len(container.Children) == 0 {
		return g.Raw(r.sanitize(body))
	}
	return render.Shell(container,
		render.ToGomponents(container.Children[0]),
		g.Raw(r.sanitize(models.Fragment(container.Children[1:]))),
	)
}

func (r *Renderer) sanitize(n models.Node) string {
	s, err := render.HTML(n)
	if err != nil {
		return ""
	}
	return r.policy.Sanitize(s)
}

func (r *Renderer) document(meta seo.PageMeta, locale, path string, main ...g.Node) ([]byte, error) {
	doc := html.Doctype(
		html.HTML(html.Lang(locale),
			head(meta),
			html.Body(html.Class("min-h-screen bg-background"),
				r.header(locale, path),
				html.Main(html.Class("container mx-auto px-4 py-8"),
					html.Div(html.Class("max-w-4xl mx-auto"), g.Group(main)),
				),
				r.footer(),
			),
		),
	)

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

func head(meta seo.PageMeta) g.Node {
	return html.Head(
		html.Meta(html.Charset("utf-8")),
		html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
		html.TitleEl(g.Text(meta.Title)),
		g.If(meta.Description != "", html.Meta(html.Name("description"), html.Content(meta.Description))),
		g.If(meta.Canonical != "", html.Link(html.Rel("canonical"), html.Href(meta.Canonical))),
		g.Map(meta.Alternates, func(a seo.Alternate) g.Node {
			return html.Link(html.Rel("alternate"), g.Attr("hreflang", a.Hreflang), html.Href(a.Href))
		}),
		g.Map(meta.OpenGraph, func(t seo.Tag) g.Node {
			return html.Meta(g.Attr("property", t.Property), html.Content(t.Content))
		}),
		g.Map(meta.Twitter, func(t seo.Tag) g.Node {
			return html.Meta(html.Name(t.Property), html.Content(t.Content))
		}),
	)
}

func (r *Renderer) header(locale, path string) g.Node {
	return html.Header(html.Class("border-b"),
		html.Nav(html.Class("container mx-auto px-4 py-4 flex justify-between"),
			html.A(html.Href(seo.LocalePath(r.Site, locale, "/blog")), g.Text(r.siteName())),
			html.Ul(html.Class("flex gap-2"),
				g.Map(r.Site.Locales, func(l string) g.Node {
					return html.Li(html.A(
						html.Href(seo.LocalePath(r.Site, l, path)),
						g.Attr("hreflang", l),
						g.If(l == locale, g.Attr("aria-current", "page")),
						g.Text(l),
					))
				}),
			),
		),
	)
}

func (r *Renderer) footer() g.Node {
	return html.Footer(html.Class("border-t py-8 text-center text-sm"),
		g.Text("© "+strconv.Itoa(time.Now().Year())+" "+r.siteName()),
	)
}

func (r *Renderer) siteName() string {
	if r.Site.SiteName == "" {
		return "Blog"
	}
	return r.Site.SiteName
}

func noPosts(locale string) string {
	switch primary(locale) {
	case "es":
		return "Todavía no hay publicaciones."
	case "pt":
		return "Ainda não há publicações."
	default:
		return "No posts yet."
	}
}
