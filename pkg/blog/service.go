// Package blog resolves posts per locale: it reads sources from the content
// store, extracts their metadata, keeps the sqlite index current and renders
// cached pages.
package blog

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/analytics"
	"github.com/folio-dev/blogrender/pkg/caching"
	"github.com/folio-dev/blogrender/pkg/db"
	"github.com/folio-dev/blogrender/pkg/langcheck"
	"github.com/folio-dev/blogrender/pkg/metadata"
	"github.com/folio-dev/blogrender/pkg/page"
	"github.com/folio-dev/blogrender/pkg/render"
	"github.com/folio-dev/blogrender/pkg/seo"
	"github.com/folio-dev/blogrender/pkg/storage"
	"github.com/go-shiori/go-readability"
)

// TopKeywordCount is the number of keywords kept per post.
const TopKeywordCount = 10

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrUnknownLocale = errors.New("unknown locale")
	ErrUnknownScope  = errors.New("unknown revalidation scope")
)

// Revalidation scopes.
const (
	ScopePost = "post"
	ScopeList = "list"
)

type Service struct {
	Site    models.SiteConfig
	BaseURL string

	store       *storage.Storage
	index       *db.DB
	cache       *caching.Cache
	transformer *render.Transformer
	pages       *page.Renderer
	analytics   *analytics.Analytics
	lang        *langcheck.Detector
	logger      *slog.Logger

	mu      sync.Mutex
	indexed map[string]bool
}

// New wires a service. cache may be nil to render on every request.
func New(site models.SiteConfig, baseURL string, store *storage.Storage, index *db.DB, cache *caching.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Site:        site,
		BaseURL:     baseURL,
		store:       store,
		index:       index,
		cache:       cache,
		transformer: render.New(logger),
		pages:       page.New(site, baseURL),
		analytics:   &analytics.Analytics{},
		lang:        langcheck.New(),
		logger:      logger,
		indexed:     make(map[string]bool),
	}
}

// Post reads and resolves one post, content included.
func (s *Service) Post(ctx context.Context, locale, slug string) (*models.Post, error) {
	if err := s.checkLocale(locale); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.store.ReadPost(locale, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidSlug) {
			return nil, fmt.Errorf("%s/%s: %w", locale, slug, ErrPostNotFound)
		}
		return nil, err
	}
	return s.BuildPost(locale, slug, string(raw)), nil
}

// BuildPost resolves a post from its source. Missing fields fall back:
// title to the slug with dashes as spaces, date to the configured default,
// author to the readability byline and then the configured default.
func (s *Service) BuildPost(locale, slug, raw string) *models.Post {
	meta := metadata.Extract(raw)
	article := s.readable(locale, slug, raw)

	post := &models.Post{
		Slug:     slug,
		Title:    first(meta.Title, strings.ReplaceAll(slug, "-", " ")),
		Excerpt:  metadata.Excerpt(raw),
		Date:     first(meta.PublishedTime, s.Site.DefaultDate),
		Author:   first(meta.Author, strings.TrimSpace(article.Byline), s.Site.DefaultAuthor),
		Tags:     meta.Tags,
		Content:  raw,
		Locale:   locale,
		Metadata: meta,
		SiteName: first(meta.OpenGraph["og:site_name"], article.SiteName),
		Image:    first(meta.OpenGraph["og:image"], article.Image),
	}
	if t, ok := metadata.ParseDate(post.Date); ok {
		post.PublishedAt = t
	}

	text := metadata.Text(raw)
	if article.Content != "" {
		if t := metadata.Text(article.Content); t != "" {
			text = t
		}
	}
	stats := s.analytics.Stats(text)
	post.Stats = models.PostStats{
		WordCount:        stats.WordCount,
		EstimatedReadMin: stats.ReadMinutes,
		TopKeywords:      s.analytics.TopNWords(text, TopKeywordCount),
	}
	if code, _, ok := s.lang.Detect(text); ok {
		post.Stats.Language = code
	}
	return post
}

// readable runs readability over the source; failures yield an empty article.
func (s *Service) readable(locale, slug, raw string) readability.Article {
	pageURL, err := url.Parse(s.BaseURL + seo.PostPath(s.Site, locale, slug))
	if err != nil {
		return readability.Article{}
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(raw), pageURL)
	if err != nil {
		s.logger.Debug("readability failed", "locale", locale, "slug", slug, "error", err)
		return readability.Article{}
	}
	return article
}

// Posts lists a locale's posts newest first. The locale is indexed on
// first use.
func (s *Service) Posts(ctx context.Context, locale string) ([]*models.Post, error) {
	if err := s.checkLocale(locale); err != nil {
		return nil, err
	}
	if err := s.ensureIndexed(ctx, locale); err != nil {
		return nil, err
	}
	return s.index.ListPosts(locale)
}

// PostsByTag lists a locale's posts carrying tag.
func (s *Service) PostsByTag(ctx context.Context, locale, tag string) ([]*models.Post, error) {
	if err := s.checkLocale(locale); err != nil {
		return nil, err
	}
	if err := s.ensureIndexed(ctx, locale); err != nil {
		return nil, err
	}
	return s.index.ListPostsByTag(locale, tag)
}

// TagCount is a tag and the number of posts carrying it.
type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// Tags counts the tags of a locale's posts, most used first.
func (s *Service) Tags(ctx context.Context, locale string) ([]TagCount, error) {
	posts, err := s.Posts(ctx, locale)
	if err != nil {
		return nil, err
	}

	perPost := make([]map[string]int, 0, len(posts))
	for _, post := range posts {
		counts := make(map[string]int, len(post.Tags))
		for _, tag := range post.Tags {
			counts[tag] = 1
		}
		perPost = append(perPost, counts)
	}

	total := analytics.Reduce(perPost)
	tags := make([]TagCount, 0, len(total))
	for tag, count := range total {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

// AllPosts lists every locale's posts, keyed by locale.
func (s *Service) AllPosts(ctx context.Context) (map[string][]*models.Post, error) {
	all := make(map[string][]*models.Post, len(s.Site.Locales))
	for _, locale := range s.Site.Locales {
		posts, err := s.Posts(ctx, locale)
		if err != nil {
			return nil, err
		}
		all[locale] = posts
	}
	return all, nil
}

func (s *Service) ensureIndexed(ctx context.Context, locale string) error {
	s.mu.Lock()
	done := s.indexed[locale]
	s.mu.Unlock()
	if done {
		return nil
	}

	report, err := s.Reindex(ctx, locale)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		s.logger.Warn("Some posts could not be indexed", "locale", locale, "failed", len(report.Failed))
	}
	return nil
}

// Rendered returns the full HTML page of a post, cached under its post tag.
func (s *Service) Rendered(ctx context.Context, locale, slug string) ([]byte, error) {
	key := caching.PostKey(slug, locale)
	if data, ok := s.cacheGet(key); ok {
		return data, nil
	}

	post, err := s.Post(ctx, locale, slug)
	if err != nil {
		return nil, err
	}

	body := s.transformer.Transform(models.RenderRequest{HTML: post.Content, Lang: locale})
	data, err := s.pages.Post(seo.Build(s.Site, s.BaseURL, post), post, body)
	if err != nil {
		return nil, err
	}
	s.cacheSet(key, data)
	return data, nil
}

// RenderedIndex returns the listing page of a locale, cached under its list tag.
func (s *Service) RenderedIndex(ctx context.Context, locale string) ([]byte, error) {
	key := caching.ListKey(locale)
	if data, ok := s.cacheGet(key); ok {
		return data, nil
	}

	posts, err := s.Posts(ctx, locale)
	if err != nil {
		return nil, err
	}
	data, err := s.pages.Index(seo.Listing(s.Site, s.BaseURL, locale), locale, posts)
	if err != nil {
		return nil, err
	}
	s.cacheSet(key, data)
	return data, nil
}

// NotFoundPage renders the missing-post page.
func (s *Service) NotFoundPage(locale string) ([]byte, error) {
	return s.pages.NotFound(locale)
}

// Revalidate drops cached pages. Scope "post" re-reads the post into the
// index; scope "list" marks the locale for reindexing. The post page of
// slug is dropped in either case.
func (s *Service) Revalidate(ctx context.Context, scope, locale, slug string) error {
	if err := s.checkLocale(locale); err != nil {
		return err
	}

	keys := []string{}
	switch scope {
	case ScopePost:
		if slug != "" {
			if err := s.indexOne(ctx, locale, slug); err != nil && !errors.Is(err, ErrPostNotFound) {
				return err
			}
		}
		// the listing shows the post's title and excerpt
		keys = append(keys, caching.ListKey(locale))
	case ScopeList:
		s.mu.Lock()
		delete(s.indexed, locale)
		s.mu.Unlock()
		keys = append(keys, caching.ListKey(locale))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	if slug != "" {
		keys = append(keys, caching.PostKey(slug, locale))
	}

	s.logger.Info("Revalidated", "scope", scope, "locale", locale, "slug", slug)
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(keys...)
}

// indexOne refreshes a single post in the index, removing it when its
// source is gone.
func (s *Service) indexOne(ctx context.Context, locale, slug string) error {
	raw, err := s.store.ReadPost(locale, slug)
	if errors.Is(err, storage.ErrNotFound) {
		if delErr := s.index.DeletePost(locale, slug); delErr != nil && !errors.Is(delErr, db.ErrPostNotFound) {
			return delErr
		}
		return fmt.Errorf("%s/%s: %w", locale, slug, ErrPostNotFound)
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	post := s.BuildPost(locale, slug, string(raw))
	_, err = s.index.UpsertPost(post, ContentHash(raw))
	return err
}

func (s *Service) checkLocale(locale string) error {
	if !s.Site.HasLocale(locale) {
		return fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
	return nil
}

func (s *Service) cacheGet(key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Service) cacheSet(key string, data []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(key, data); err != nil {
		s.logger.Warn("Failed to cache page", "key", key, "error", err)
	}
}

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
