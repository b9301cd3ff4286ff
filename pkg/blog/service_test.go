package blog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/caching"
	"github.com/folio-dev/blogrender/pkg/db"
	"github.com/folio-dev/blogrender/pkg/storage"
)

const englishProse = `The transformer walks every node of the parsed document and builds a
tree of components that the page can render. Attributes are renamed, inline styles are parsed
into records, and images receive explicit dimensions before they reach the browser.`

const spanishProse = `El transformador recorre cada nodo del documento y construye un árbol
de componentes que la página puede mostrar. Los atributos se renombran y los estilos se
convierten en registros antes de llegar al navegador.`

func postHTML(title, date, keywords, prose string) string {
	var head strings.Builder
	if title != "" {
		head.WriteString("<title>" + title + "</title>")
	}
	if date != "" {
		head.WriteString(`<meta name="date" content="` + date + `">`)
	}
	if keywords != "" {
		head.WriteString(`<meta name="keywords" content="` + keywords + `">`)
	}
	return "<html><head>" + head.String() + "</head><body><article><p>" + prose + "</p></article></body></html>"
}

type fixture struct {
	svc   *Service
	store *storage.Storage
	index *db.DB
}

func setupService(t *testing.T) fixture {
	t.Helper()

	store := storage.New(t.TempDir())
	posts := []struct{ locale, slug, html string }{
		{"en", "hello-world", postHTML("Hello World", "2025-03-01", "go, html", englishProse)},
		{"en", "older-post", postHTML("Older", "2024-12-24", "go", englishProse)},
		{"en", "no-head-fields", postHTML("", "", "", englishProse)},
		{"es", "hola-mundo", postHTML("Hola Mundo", "2025-02-01", "", spanishProse)},
		{"es", "wrong-language", postHTML("Wrong", "2025-01-15", "", englishProse)},
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

	site := models.DefaultConfig()
	site.DefaultAuthor = "Site Author"
	site.Workers = 3
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return fixture{
		svc:   New(site, "https://blog.example", store, index, cache, logger),
		store: store,
		index: index,
	}
}

func TestPost(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	post, err := f.svc.Post(ctx, "en", "hello-world")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if post.Title != "Hello World" {
		t.Errorf("Title = %q, want %q", post.Title, "Hello World")
	}
	if post.Date != "2025-03-01" || !post.PublishedAt.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %q (%v), want 2025-03-01", post.Date, post.PublishedAt)
	}
	if !reflect.DeepEqual(post.Tags, []string{"go", "html"}) {
		t.Errorf("Tags = %v, want [go html]", post.Tags)
	}
	if !strings.HasPrefix(post.Excerpt, "The transformer walks") || !strings.HasSuffix(post.Excerpt, "...") {
		t.Errorf("Excerpt = %q, want truncated first paragraph", post.Excerpt)
	}
	if post.Stats.WordCount == 0 || post.Stats.Language != "en" {
		t.Errorf("Stats = %+v, want words counted and language en", post.Stats)
	}
	if post.Content == "" {
		t.Errorf("Content is empty")
	}
}

func TestPost_Fallbacks(t *testing.T) {
	f := setupService(t)

	post, err := f.svc.Post(context.Background(), "en", "no-head-fields")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if post.Title != "no head fields" {
		t.Errorf("Title = %q, want slug with spaces", post.Title)
	}
	if post.Date != "2025-01-01" {
		t.Errorf("Date = %q, want default date", post.Date)
	}
	if post.Author != "Site Author" {
		t.Errorf("Author = %q, want default author", post.Author)
	}
	if len(post.Tags) != 0 {
		t.Errorf("Tags = %v, want none", post.Tags)
	}
}

func TestPost_Errors(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		locale string
		slug   string
		want   error
	}{
		{name: "missing post", locale: "en", slug: "missing", want: ErrPostNotFound},
		{name: "other locale only", locale: "pt-BR", slug: "hello-world", want: ErrPostNotFound},
		{name: "traversal", locale: "en", slug: "../es/posts/hola-mundo", want: ErrPostNotFound},
		{name: "unknown locale", locale: "fr", slug: "hello-world", want: ErrUnknownLocale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Post(ctx, tt.locale, tt.slug); !errors.Is(err, tt.want) {
				t.Errorf("Post() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPosts(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	posts, err := f.svc.Posts(ctx, "en")
	if err != nil {
		t.Fatalf("Posts() error = %v", err)
	}
	var slugs []string
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	// no-head-fields carries the default date 2025-01-01
	want := []string{"hello-world", "no-head-fields", "older-post"}
	if !reflect.DeepEqual(slugs, want) {
		t.Errorf("Posts() slugs = %v, want %v", slugs, want)
	}

	tagged, err := f.svc.PostsByTag(ctx, "en", "html")
	if err != nil || len(tagged) != 1 || tagged[0].Slug != "hello-world" {
		t.Errorf("PostsByTag(html) = %v, %v", tagged, err)
	}

	empty, err := f.svc.Posts(ctx, "pt-BR")
	if err != nil || len(empty) != 0 {
		t.Errorf("Posts(pt-BR) = %v, %v, want empty", empty, err)
	}
}

func TestReindex(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	report, err := f.svc.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if report.Indexed != 5 || report.Unchanged != 0 || len(report.Failed) != 0 {
		t.Errorf("first Reindex() = %+v, want 5 indexed", report)
	}
	wantMismatch := []LanguageMismatch{{Locale: "es", Slug: "wrong-language", Detected: "en"}}
	if !reflect.DeepEqual(report.Mismatches, wantMismatch) {
		t.Errorf("Mismatches = %v, want %v", report.Mismatches, wantMismatch)
	}

	report, err = f.svc.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if report.Indexed != 0 || report.Unchanged != 5 {
		t.Errorf("second Reindex() = %+v, want 5 unchanged", report)
	}

	path, _ := f.store.PostPath("en", "older-post")
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	report, err = f.svc.Reindex(ctx, "en")
	if err != nil {
		t.Fatalf("Reindex(en) error = %v", err)
	}
	if report.Removed != 1 || report.Unchanged != 2 {
		t.Errorf("Reindex(en) after delete = %+v, want 1 removed, 2 unchanged", report)
	}
	if n, _ := f.index.CountPosts("en"); n != 2 {
		t.Errorf("CountPosts(en) = %d, want 2", n)
	}

	if _, err := f.svc.Reindex(ctx, "fr"); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("Reindex(fr) error = %v, want ErrUnknownLocale", err)
	}
}

func TestRenderedAndRevalidate(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	page, err := f.svc.Rendered(ctx, "en", "hello-world")
	if err != nil {
		t.Fatalf("Rendered() error = %v", err)
	}
	for _, want := range []string{"<title>Hello World | Blog</title>", `class="rendered-html w-full"`, "The transformer walks"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("Rendered() missing %q", want)
		}
	}

	if err := f.store.SavePost("en", "hello-world", []byte(postHTML("Hello Again", "2025-03-02", "", englishProse))); err != nil {
		t.Fatal(err)
	}

	cached, err := f.svc.Rendered(ctx, "en", "hello-world")
	if err != nil {
		t.Fatalf("Rendered() error = %v", err)
	}
	if string(cached) != string(page) {
		t.Errorf("Rendered() within TTL did not serve the cached page")
	}

	if err := f.svc.Revalidate(ctx, ScopePost, "en", "hello-world"); err != nil {
		t.Fatalf("Revalidate() error = %v", err)
	}
	fresh, err := f.svc.Rendered(ctx, "en", "hello-world")
	if err != nil {
		t.Fatalf("Rendered() error = %v", err)
	}
	if !strings.Contains(string(fresh), "<title>Hello Again | Blog</title>") {
		t.Errorf("Rendered() after revalidate still stale")
	}

	indexed, err := f.index.GetPost("en", "hello-world")
	if err != nil || indexed.Title != "Hello Again" {
		t.Errorf("index after post revalidate = %v, %v, want updated title", indexed, err)
	}

	if _, err := f.svc.Rendered(ctx, "en", "missing"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Rendered(missing) error = %v, want ErrPostNotFound", err)
	}
}

func TestRevalidate_List(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if _, err := f.svc.RenderedIndex(ctx, "es"); err != nil {
		t.Fatalf("RenderedIndex() error = %v", err)
	}
	if err := f.store.SavePost("es", "nuevo", []byte(postHTML("Nuevo", "2025-06-01", "", spanishProse))); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Revalidate(ctx, ScopeList, "es", ""); err != nil {
		t.Fatalf("Revalidate(list) error = %v", err)
	}
	listing, err := f.svc.RenderedIndex(ctx, "es")
	if err != nil {
		t.Fatalf("RenderedIndex() error = %v", err)
	}
	if !strings.Contains(string(listing), `href="/es/blog/nuevo"`) {
		t.Errorf("RenderedIndex() after list revalidate misses the new post")
	}

	if err := f.svc.Revalidate(ctx, "everything", "es", ""); !errors.Is(err, ErrUnknownScope) {
		t.Errorf("Revalidate(unknown scope) error = %v, want ErrUnknownScope", err)
	}
	if err := f.svc.Revalidate(ctx, ScopeList, "fr", ""); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("Revalidate(fr) error = %v, want ErrUnknownLocale", err)
	}
}

func TestContentHash(t *testing.T) {
	if got := ContentHash([]byte("abc")); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("ContentHash() = %q", got)
	}
}

func TestTags(t *testing.T) {
	f := setupService(t)

	got, err := f.svc.Tags(context.Background(), "en")
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	want := []TagCount{{Tag: "go", Count: 2}, {Tag: "html", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}

	if _, err := f.svc.Tags(context.Background(), "fr"); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("Tags(fr) error = %v, want ErrUnknownLocale", err)
	}
}
