package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vaibhav-Uniyal/policyq/internal/cache"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
	"github.com/Vaibhav-Uniyal/policyq/internal/worker"
)

// Document is a fetched policy document before text extraction.
type Document struct {
	Source      string `json:"source"`
	FinalURL    string `json:"final_url"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Fetcher retrieves policy documents over HTTP or from local files, with
// per-host rate limiting, optional robots.txt compliance, and a byte-level
// cache in front of the network.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	robots    *RobotsChecker
	limiter   *worker.HostLimiter
	store     cache.Cache
	cacheTTL  time.Duration
}

// NewFetcher creates a fetcher from HTTP configuration. A Nop cache
// disables caching; robots checking follows cfg.RespectRobots.
func NewFetcher(cfg model.HTTPConfig, store cache.Cache, cacheTTL time.Duration) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		limiter:   worker.NewHostLimiter(cfg.RatePerHost, cfg.RateBurst),
		store:     store,
		cacheTTL:  cacheTTL,
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}
	return f
}

// Fetch retrieves a document. Sources without an http(s) scheme are read
// from the local filesystem.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*Document, error) {
	if isLocal(source) {
		return f.fetchLocal(source)
	}

	key := cache.Key("fetch:" + source)
	if raw, ok := f.store.Get(key); ok {
		var doc Document
		if err := json.Unmarshal(raw, &doc); err == nil {
			log.Debug().Str("source", source).Msg("fetch cache hit")
			return &doc, nil
		}
	}

	if err := f.limiter.Wait(ctx, source); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows fetching %s", source)
		}
		if crawlDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(crawlDelay):
			}
		}
	}

	doc, err := f.fetchHTTP(ctx, source)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(doc); err == nil {
		_ = f.store.Set(key, raw, f.cacheTTL)
	}
	return doc, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, source string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf,text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status fetching %s: %d %s", source, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	log.Debug().Str("source", source).Int("bytes", len(body)).Msg("fetched document")

	return &Document{
		Source:      source,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (f *Fetcher) fetchLocal(source string) (*Document, error) {
	path := strings.TrimPrefix(source, "file://")
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Document{
		Source:   source,
		FinalURL: source,
		Body:     body,
	}, nil
}

func isLocal(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return true
	}
	return parsed.Scheme != "http" && parsed.Scheme != "https"
}
