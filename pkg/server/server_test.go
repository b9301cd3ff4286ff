package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/blog"
	"github.com/folio-dev/blogrender/pkg/caching"
	"github.com/folio-dev/blogrender/pkg/db"
	"github.com/folio-dev/blogrender/pkg/storage"
	"github.com/temoto/robotstxt"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	store := storage.New(t.TempDir())
	posts := []struct{ locale, slug, html string }{
		{"en", "hello-world", `<html><head><title>Hello World</title><meta name="date" content="2025-03-01"><meta name="keywords" content="go"></head><body><p>Hello from the blog.</p></body></html>`},
		{"pt-BR", "ola-mundo", `<html><head><title>Olá Mundo</title><meta name="date" content="2025-02-01"></head><body><p>Olá do blog.</p></body></html>`},
	}
	for _, p := range posts {
		if err := store.SavePost(p.locale, p.slug, []byte(p.html)); err != nil {
			t.Fatalf("SavePost() error = %v", err)
		}
	}

	index, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { index.Close() })

	cache, err := caching.NewCache(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := blog.New(models.DefaultConfig(), "https://blog.example", store, index, cache, logger)
	return New(svc, logger)
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestAPIPost(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "default locale", target: "/api/blog/hello-world", wantStatus: http.StatusOK, wantBody: `"title":"Hello World"`},
		{name: "explicit locale", target: "/api/blog/ola-mundo?locale=pt-BR", wantStatus: http.StatusOK, wantBody: `"locale":"pt-BR"`},
		{name: "missing post", target: "/api/blog/nope", wantStatus: http.StatusNotFound, wantBody: `{"error":"Post not found"}`},
		{name: "wrong locale", target: "/api/blog/hello-world?locale=es", wantStatus: http.StatusNotFound, wantBody: `{"error":"Post not found"}`},
		{name: "unknown locale", target: "/api/blog/hello-world?locale=fr", wantStatus: http.StatusBadRequest, wantBody: `"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("GET %s body = %s, want it to contain %s", tt.target, rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Errorf("GET %s missing %s header", tt.target, RequestIDHeader)
			}
		})
	}
}

func TestAPIList(t *testing.T) {
	s := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/blog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/blog status = %d", rec.Code)
	}
	var posts []models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "hello-world" {
		t.Errorf("GET /api/blog = %+v, want hello-world only", posts)
	}

	rec = do(t, s, http.MethodGet, "/api/blog?locale=es", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("GET /api/blog?locale=es = %d %s, want 200 []", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/blog?tag=go", nil)
	if !strings.Contains(rec.Body.String(), "hello-world") {
		t.Errorf("GET /api/blog?tag=go = %s, want hello-world", rec.Body.String())
	}
}

func TestAPITags(t *testing.T) {
	s := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/tags", nil)
	if want := `[{"tag":"go","count":1}]`; rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("GET /api/tags = %d %s, want 200 %s", rec.Code, rec.Body.String(), want)
	}

	rec = do(t, s, http.MethodGet, "/api/tags?locale=pt-BR", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("GET /api/tags?locale=pt-BR = %d %s, want 200 []", rec.Code, rec.Body.String())
	}
}

func TestRevalidate(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "post scope", body: `{"slug":"hello-world","locale":"en","scope":"post"}`, wantStatus: http.StatusOK, wantBody: `{"ok":true}`},
		{name: "list scope", body: `{"locale":"pt-BR","scope":"list"}`, wantStatus: http.StatusOK, wantBody: `{"ok":true}`},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest, wantBody: `"error"`},
		{name: "unknown scope", body: `{"scope":"all"}`, wantStatus: http.StatusBadRequest, wantBody: `"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/revalidate", bytes.NewBufferString(tt.body))
			if rec.Code != tt.wantStatus {
				t.Errorf("POST /api/revalidate status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("POST /api/revalidate body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestPages(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		target     string
		wantStatus int
		wantBody   string
	}{
		{target: "/", wantStatus: http.StatusOK, wantBody: `href="/blog/hello-world"`},
		{target: "/blog", wantStatus: http.StatusOK, wantBody: `href="/blog/hello-world"`},
		{target: "/blog/hello-world", wantStatus: http.StatusOK, wantBody: "<title>Hello World | Blog</title>"},
		{target: "/pt-BR/blog", wantStatus: http.StatusOK, wantBody: `href="/pt-BR/blog/ola-mundo"`},
		{target: "/pt-BR/blog/ola-mundo", wantStatus: http.StatusOK, wantBody: `<html lang="pt-BR">`},
		{target: "/pt-BR/blog/hello-world", wantStatus: http.StatusNotFound, wantBody: "Post Not Found"},
		{target: "/fr/blog", wantStatus: http.StatusNotFound, wantBody: "Post Not Found"},
		{target: "/blog/missing", wantStatus: http.StatusNotFound, wantBody: "Post Not Found"},
		{target: "/a/b/c/d", wantStatus: http.StatusNotFound, wantBody: "Post Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("GET %s body missing %q", tt.target, tt.wantBody)
			}
		})
	}
}

func TestDefaultLocalePrefixRedirects(t *testing.T) {
	s := setupServer(t)

	rec := do(t, s, http.MethodGet, "/en/blog/hello-world", nil)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("GET /en/blog/hello-world status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if got := rec.Header().Get("Location"); got != "/blog/hello-world" {
		t.Errorf("Location = %q, want %q", got, "/blog/hello-world")
	}
}

func TestRobotsAndSitemap(t *testing.T) {
	s := setupServer(t)

	rec := do(t, s, http.MethodGet, "/robots.txt", nil)
	robots, err := robotstxt.FromBytes(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("robots.txt does not parse: %v", err)
	}
	if !robots.TestAgent("/blog/hello-world", "*") || robots.TestAgent("/api/blog", "*") {
		t.Errorf("robots.txt rules wrong:\n%s", rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/sitemap.xml", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /sitemap.xml status = %d", rec.Code)
	}
	for _, want := range []string{
		"<loc>https://blog.example/blog/hello-world</loc>",
		"<loc>https://blog.example/pt-BR/blog/ola-mundo</loc>",
		"<lastmod>2025-03-01T00:00:00Z</lastmod>",
	} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupServer(t)

	if rec := do(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d", rec.Code)
	}
	do(t, s, http.MethodGet, "/api/blog/hello-world", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	want := `blogrender_http_requests_total{code="200",method="GET",route="/api/blog/{slug}"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %q", want)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, "abc-123")
	}
}
