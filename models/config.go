// Package models defines data structures for configuration, posts and rendering.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds runtime configuration for the blog.
// Values come from an optional YAML file, then .env / environment, then CLI flags.
type SiteConfig struct {
	SiteName      string        `yaml:"site_name"`
	BaseURL       string        `yaml:"base_url"`
	Locales       []string      `yaml:"locales"`
	DefaultLocale string        `yaml:"default_locale"`
	ContentDir    string        `yaml:"content_dir"`
	DBPath        string        `yaml:"db_path"`
	CacheDir      string        `yaml:"cache_dir"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	DefaultAuthor string        `yaml:"default_author"`
	DefaultDate   string        `yaml:"default_date"`
	Addr          string        `yaml:"addr"`
	Workers       int           `yaml:"workers"`
	Sanitize      bool          `yaml:"sanitize"`
	TwitterCard   string        `yaml:"twitter_card"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() SiteConfig {
	return SiteConfig{
		SiteName:      "Blog",
		BaseURL:       "http://localhost:8080",
		Locales:       []string{"en", "pt-BR", "es"},
		DefaultLocale: "en",
		ContentDir:    "content/blog",
		DBPath:        "blogrender.db",
		CacheDir:      ".cache/blogrender",
		CacheTTL:      60 * time.Second,
		DefaultAuthor: "",
		DefaultDate:   "2025-01-01",
		Addr:          ":8080",
		Workers:       4,
		TwitterCard:   "summary_large_image",
	}
}

// LoadConfig reads a YAML config on top of the defaults. An empty path
// skips the file. A .env file in the working directory is loaded first.
func LoadConfig(path string) (SiteConfig, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the program relies on.
func (c *SiteConfig) Validate() error {
	if len(c.Locales) == 0 {
		return errors.New("config: at least one locale is required")
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = c.Locales[0]
	}
	if !c.HasLocale(c.DefaultLocale) {
		return fmt.Errorf("config: default locale %q is not in locales", c.DefaultLocale)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: cache_ttl must not be negative")
	}
	return nil
}

// HasLocale reports whether locale is served.
func (c SiteConfig) HasLocale(locale string) bool {
	for _, l := range c.Locales {
		if l == locale {
			return true
		}
	}
	return false
}
