package common

import (
	"fmt"
	"log/slog"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/blog"
	"github.com/folio-dev/blogrender/pkg/caching"
	"github.com/folio-dev/blogrender/pkg/db"
	"github.com/folio-dev/blogrender/pkg/seo"
	"github.com/folio-dev/blogrender/pkg/storage"
)

// OpenService wires the blog service from cfg. The returned close function
// releases the index.
func OpenService(cfg models.SiteConfig, logger *slog.Logger) (*blog.Service, func() error, error) {
	index, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}

	cache, err := caching.NewCache(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		_ = index.Close()
		return nil, nil, err
	}

	baseURL := seo.BaseURL(cfg.BaseURL)
	logger.Debug("Opened blog service", "content_dir", cfg.ContentDir, "db", index.Path(), "base_url", baseURL)

	svc := blog.New(cfg, baseURL, storage.New(cfg.ContentDir), index, cache, logger)
	return svc, index.Close, nil
}
