// Package fetcher downloads HTML sources for the render and meta commands.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/folio-dev/blogrender/pkg/storage"
	"github.com/temoto/robotstxt"
)

const (
	DefaultTimeout = 30 * time.Second
	// MaxBodyBytes caps a downloaded document.
	MaxBodyBytes = 10 << 20
	userAgent    = "blogrender/1.0 (+https://github.com/folio-dev/blogrender)"
	robotsAgent  = "blogrender"
)

// ErrDisallowed is returned when robots.txt forbids the path.
var ErrDisallowed = errors.New("blocked by robots.txt")

type Fetcher struct {
	client *http.Client

	// RespectRobots makes GetHTMLBytes consult the host's robots.txt first.
	RespectRobots bool

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

func NewFetcher() *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: DefaultTimeout})
}

// NewFetcherWithClient uses client for every request.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{
		client:        client,
		RespectRobots: true,
		robots:        make(map[string]*robotstxt.Group),
	}
}

// GetHTMLBytes fetches url and returns the body decoded to UTF-8.
func (f *Fetcher) GetHTMLBytes(ctx context.Context, url string) ([]byte, error) {
	if f.RespectRobots {
		if err := f.Allowed(ctx, url); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return storage.DecodeUTF8(bodyBytes), nil
}

// Allowed checks rawURL against the robots.txt of its host. The rules are
// cached per host. An unreachable or unparsable robots.txt allows everything.
func (f *Fetcher) Allowed(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse url: %w", err)
	}
	origin := u.Scheme + "://" + u.Host

	f.mu.Lock()
	group, ok := f.robots[origin]
	f.mu.Unlock()

	if !ok {
		group = f.loadRobots(ctx, origin)
		f.mu.Lock()
		f.robots[origin] = group
		f.mu.Unlock()
	}

	if group != nil && !group.Test(u.EscapedPath()) {
		return fmt.Errorf("%w: %s", ErrDisallowed, u.Path)
	}
	return nil
}

func (f *Fetcher) loadRobots(ctx context.Context, origin string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(robotsAgent)
}
