package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/folio-dev/blogrender/pkg/blog"
	"github.com/folio-dev/blogrender/pkg/seo"
	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

type revalidateRequest struct {
	Slug   string `json:"slug"`
	Locale string `json:"locale"`
	Scope  string `json:"scope"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.Robots(s.blog.BaseURL)))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.AllPosts(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	body, err := seo.Sitemap(s.site, s.blog.BaseURL, posts, s.now())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// GET /api/blog?locale=&tag=
func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	locale := s.queryLocale(r)
	var err error
	var posts any
	if tag := r.URL.Query().Get("tag"); tag != "" {
		posts, err = s.blog.PostsByTag(r.Context(), locale, tag)
	} else {
		posts, err = s.blog.Posts(r.Context(), locale)
	}
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// GET /api/blog/{slug}?locale=
func (s *Server) handleAPIPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.blog.Post(r.Context(), s.queryLocale(r), chi.URLParam(r, "slug"))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GET /api/tags?locale=
func (s *Server) handleAPITags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.blog.Tags(r.Context(), s.queryLocale(r))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// POST /api/revalidate {slug, locale, scope}
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	var req revalidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Locale == "" {
		req.Locale = s.site.DefaultLocale
	}

	if err := s.blog.Revalidate(r.Context(), req.Scope, req.Locale, req.Slug); err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	locale, ok := s.pathLocale(w, r)
	if !ok {
		return
	}
	body, err := s.blog.RenderedIndex(r.Context(), locale)
	if err != nil {
		s.pageError(w, r, locale, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	locale, ok := s.pathLocale(w, r)
	if !ok {
		return
	}
	body, err := s.blog.Rendered(r.Context(), locale, chi.URLParam(r, "slug"))
	if err != nil {
		s.pageError(w, r, locale, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.pageError(w, r, s.site.DefaultLocale, blog.ErrPostNotFound)
}

// pathLocale resolves the {locale} segment. The default locale is served
// without prefix: a prefixed request is redirected, an unknown locale is 404.
func (s *Server) pathLocale(w http.ResponseWriter, r *http.Request) (string, bool) {
	locale := chi.URLParam(r, "locale")
	if locale == "" {
		return s.site.DefaultLocale, true
	}
	if !s.site.HasLocale(locale) {
		s.handleNotFound(w, r)
		return "", false
	}
	if locale == s.site.DefaultLocale {
		target := strings.TrimPrefix(r.URL.Path, "/"+locale)
		if target == "" {
			target = "/"
		}
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
		return "", false
	}
	return locale, true
}

func (s *Server) queryLocale(r *http.Request) string {
	if locale := r.URL.Query().Get("locale"); locale != "" {
		return locale
	}
	return s.site.DefaultLocale
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrPostNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Post not found"})
	case errors.Is(err, blog.ErrUnknownLocale):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Unknown locale"})
	case errors.Is(err, blog.ErrUnknownScope):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Unknown scope"})
	default:
		s.logger.Error("API request failed", "request_id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, locale string, err error) {
	if errors.Is(err, blog.ErrPostNotFound) || errors.Is(err, blog.ErrUnknownLocale) {
		body, renderErr := s.blog.NotFoundPage(locale)
		if renderErr != nil {
			http.NotFound(w, r)
			return
		}
		writeHTML(w, http.StatusNotFound, body)
		return
	}
	s.serverError(w, r, err)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", "request_id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
