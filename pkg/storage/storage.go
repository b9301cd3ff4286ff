// Package storage reads post sources from the content directory laid out as
// <root>/<locale>/posts/<slug>.html.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// PostExt is the file extension of post sources.
const PostExt = ".html"

var (
	ErrNotFound    = errors.New("post not found")
	ErrInvalidSlug = errors.New("invalid slug")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Storage struct {
	Root string
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

func New(root string) *Storage {
	return &Storage{Root: root}
}

// PostPath returns the file path of a post.
func (s *Storage) PostPath(locale, slug string) (string, error) {
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	if err := ValidateSlug(locale); err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return filepath.Join(s.Root, locale, "posts", slug+PostExt), nil
}

// ListSlugs returns the slugs of every post in locale, sorted.
// A missing locale directory is an empty listing.
func (s *Storage) ListSlugs(locale string) ([]string, error) {
	if err := ValidateSlug(locale); err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	dir := filepath.Join(s.Root, locale, "posts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list posts in %s: %w", dir, err)
	}

	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, PostExt) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, PostExt))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// ReadPost returns the post source as UTF-8.
func (s *Storage) ReadPost(locale, slug string) ([]byte, error) {
	path, err := s.PostPath(locale, slug)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", locale, slug, ErrNotFound)
		}
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return DecodeUTF8(data), nil
}

// SavePost writes a post source, creating the locale directory as needed.
func (s *Storage) SavePost(locale, slug string, content []byte) error {
	path, err := s.PostPath(locale, slug)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating post directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

// Stat returns size and modification time of a post (no content read).
func (s *Storage) Stat(locale, slug string) (*FileStats, error) {
	path, err := s.PostPath(locale, slug)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", locale, slug, ErrNotFound)
		}
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// ValidateSlug rejects empty names, path separators and dot segments.
func ValidateSlug(slug string) error {
	if slug == "" || slug == "." || slug == ".." ||
		strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// DecodeUTF8 returns data as UTF-8. Valid UTF-8 only loses its BOM; anything
// else is decoded with the charset chardet guesses, falling back to
// windows-1252.
func DecodeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM)
	}

	name := "windows-1252"
	if result, err := chardet.NewTextDetector().DetectBest(data); err == nil && result != nil {
		name = result.Charset
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		enc, _ = htmlindex.Get("windows-1252")
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(decoded) {
		return bytes.ToValidUTF8(data, []byte("�"))
	}
	return decoded
}
