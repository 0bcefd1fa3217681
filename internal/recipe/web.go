// Package recipe loads recipes from the web: it fetches a page, runs the
// extraction pipeline over it and caches the result by URL.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/extract"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeLoader = (*WebSource)(nil)

const (
	defaultUserAgent = "ottoweb/1.0 (+recipe reader)"
	defaultMaxBytes  = 5 << 20
	defaultTimeout   = 15 * time.Second
)

// Option configures a WebSource.
type Option func(*WebSource)

// WithHTTPClient replaces the HTTP client used for page fetches. The
// client itself is never modified; WithTimeout applies to a copy.
func WithHTTPClient(c *http.Client) Option {
	return func(s *WebSource) {
		if c != nil {
			s.http = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *WebSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every fetch.
func WithUserAgent(ua string) Option {
	return func(s *WebSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBytes caps how much of a page body is read.
func WithMaxBytes(n int64) Option {
	return func(s *WebSource) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithStore enables caching of extracted recipes.
func WithStore(store domain.RecipeStore) Option {
	return func(s *WebSource) { s.store = store }
}

// WebSource fetches recipe pages over HTTP and extracts them.
type WebSource struct {
	http      *http.Client
	timeout   time.Duration
	pipeline  *extract.Pipeline
	store     domain.RecipeStore
	userAgent string
	maxBytes  int64
	log       *logger.Logger
}

// NewWebSource creates a web recipe loader.
func NewWebSource(pipeline *extract.Pipeline, log *logger.Logger, opts ...Option) *WebSource {
	s := &WebSource{
		http:      &http.Client{Timeout: defaultTimeout},
		pipeline:  pipeline,
		userAgent: defaultUserAgent,
		maxBytes:  defaultMaxBytes,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout > 0 && s.http.Timeout != s.timeout {
		client := *s.http
		client.Timeout = s.timeout
		s.http = &client
	}
	return s
}

// Load returns the recipe at rawURL, from the cache when present.
func (s *WebSource) Load(ctx context.Context, rawURL string) (*domain.Recipe, error) {
	if rawURL == "" {
		return nil, domain.ErrMissingURL
	}

	if s.store != nil {
		if r, err := s.store.Load(ctx, rawURL); err == nil {
			s.log.Debug("cache hit for %s", rawURL)
			return r, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("cache lookup for %s: %v", rawURL, err)
		}
	}

	markup, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	r, err := s.pipeline.Extract(markup, rawURL)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", rawURL, err)
	}
	s.log.Info("extracted %q: %d ingredients, %d steps", r.Title, len(r.Ingredients), len(r.Steps))

	if s.store != nil {
		if err := s.store.Save(ctx, r); err != nil {
			s.log.Warn("caching %s: %v", rawURL, err)
		}
	}
	return r, nil
}

// Fetch downloads the page at rawURL and returns its body. Transport
// failures and non-2xx responses are reported as *domain.FetchError.
func (s *WebSource) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("invalid url %q", rawURL)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &domain.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	s.log.Debug("fetched %s: %d bytes in %s", rawURL, len(body), time.Since(start).Round(time.Millisecond))
	return string(body), nil
}

// LoadFile extracts a recipe from a saved HTML page. The file path is used
// as the source URL.
func (s *WebSource) LoadFile(path string) (*domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := s.pipeline.Extract(string(data), path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	return r, nil
}
