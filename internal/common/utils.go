// Package common holds helpers shared by the CLI actions: logging, config,
// source loading and output encoding.
package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/fetcher"
	"github.com/folio-dev/blogrender/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// NewLogger builds the JSON stderr logger; --quiet keeps errors only,
// --verbose adds debug output.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		logLevel = slog.LevelError
	case c.Bool("verbose"):
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies the flags that override it.
func LoadConfig(c *cli.Context) (models.SiteConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if v := c.String("content-dir"); v != "" {
		cfg.ContentDir = v
	}
	if v := c.String("db"); v != "" {
		cfg.DBPath = v
	}
	if v := c.String("cache-dir"); v != "" {
		cfg.CacheDir = v
	}
	if v := c.String("addr"); v != "" {
		cfg.Addr = v
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("sanitize") {
		cfg.Sanitize = c.Bool("sanitize")
	}
	return cfg, cfg.Validate()
}

// ReadSource loads HTML from a URL, a file path, or stdin for "-".
func ReadSource(ctx context.Context, c *cli.Context, arg string) ([]byte, error) {
	switch {
	case arg == "" || arg == "-":
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return storage.DecodeUTF8(data), nil
	case IsURL(arg):
		return fetcher.NewFetcher().GetHTMLBytes(ctx, SanitizeURL(arg))
	default:
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return storage.DecodeUTF8(data), nil
	}
}

// IsURL reports whether arg looks like an http(s) URL.
func IsURL(arg string) bool {
	cleaned := SanitizeURL(arg)
	return strings.HasPrefix(cleaned, "http://") || strings.HasPrefix(cleaned, "https://")
}

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown link syntax.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// WriteOutput encodes v as yaml or json.
func WriteOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}
