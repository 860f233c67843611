// Package tmdb is a small client for The Movie Database v3 API covering the
// endpoints cinegrid needs: trending, discover, multi-search, genre lists,
// watch providers and videos. Responses are normalized into catalog items.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/cinegrid/pkg/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
	DefaultTimeout  = 15 * time.Second
)

// ErrMissingToken is returned by New when no access token is configured.
var ErrMissingToken = errors.New("tmdb: access token is required")

// Config holds the client settings. Zero values fall back to defaults.
type Config struct {
	AccessToken string
	BaseURL     string
	Language    string
	Timeout     time.Duration

	// RequestsPerSecond caps outgoing requests. Zero or negative disables
	// the limiter.
	RequestsPerSecond float64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client talks to the TMDB API. It is safe for concurrent use and can be
// reconfigured at runtime.
type Client struct {
	logger *log.Logger

	mu      sync.RWMutex
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client authenticated with the configured bearer token.
func New(cfg Config) (*Client, error) {
	c := &Client{logger: log.ForService("tmdb")}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure swaps the client settings. In-flight requests keep the settings
// they started with.
func (c *Client) Configure(cfg Config) error {
	if cfg.AccessToken == "" {
		return ErrMissingToken
	}
	cfg = cfg.withDefaults()

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.AccessToken},
	)
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = cfg.Timeout

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	c.mu.Lock()
	c.cfg = cfg
	c.http = hc
	c.limiter = rate.NewLimiter(limit, burst)
	c.mu.Unlock()
	return nil
}

// Language returns the configured response language.
func (c *Client) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Language
}

// get performs a GET against path with the given query parameters and
// decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	c.mu.RLock()
	cfg, hc, limiter := c.cfg, c.http, c.limiter
	c.mu.RUnlock()

	if params == nil {
		params = url.Values{}
	}
	if params.Get("language") == "" {
		params.Set("language", cfg.Language)
	}

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	u := cfg.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("failed to close response body: %v", err)
		}
	}()
	c.logger.Debugf("GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request %s failed with status %d", e.Path, e.StatusCode)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
