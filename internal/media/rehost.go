package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront-ops/import-service/internal/cache"
)

// ContentStore persists fetched media under a canonical URL.
type ContentStore interface {
	Put(ctx context.Context, name string, data []byte) (canonicalURL string, err error)
}

type localContentStore struct {
	dir     string
	baseURL string
}

// NewLocalContentStore writes media files under dir and serves them
// from baseURL.
func NewLocalContentStore(dir, baseURL string) (ContentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &localContentStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *localContentStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Rehoster fetches external media and re-hosts it through the content
// store. The canonical name is derived from the source URL, so the
// same source always re-hosts to the same canonical URL; a cache layer
// short-circuits repeat fetches across rows and jobs.
type Rehoster struct {
	store   ContentStore
	client  *http.Client
	cache   cache.CacheService // optional
	timeout time.Duration
	logger  *slog.Logger
}

func NewRehoster(store ContentStore, client *http.Client, cacheService cache.CacheService, timeout time.Duration, logger *slog.Logger) *Rehoster {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Rehoster{
		store:   store,
		client:  client,
		cache:   cacheService,
		timeout: timeout,
		logger:  logger,
	}
}

const rehostCacheTTL = 24 * time.Hour

// Rehost downloads sourceURL and stores the bytes, returning the
// canonical URL. Fetch and store failures are per-row failures for the
// caller, never batch aborts.
func (r *Rehoster) Rehost(ctx context.Context, sourceURL string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid source url %q", sourceURL)
	}

	cacheKey := "rehost:" + sourceURL
	if r.cache != nil {
		var cached string
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil && cached != "" {
			return cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch failed: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}

	canonical, err := r.store.Put(ctx, canonicalName(sourceURL), data)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, canonical, rehostCacheTTL); err != nil {
			r.logger.Warn("failed to cache re-hosted url", "source", sourceURL, "error", err)
		}
	}
	return canonical, nil
}

// canonicalName hashes the source URL so re-importing the same source
// deduplicates to one stored file.
func canonicalName(sourceURL string) string {
	sum := sha1.Sum([]byte(sourceURL))
	ext := path.Ext(sourceURL)
	if idx := strings.IndexAny(ext, "?#"); idx >= 0 {
		ext = ext[:idx]
	}
	if len(ext) > 10 {
		ext = ""
	}
	return hex.EncodeToString(sum[:]) + ext
}
