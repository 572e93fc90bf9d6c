package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/compumarket/catalogadmin/internal/credentials"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production catalog API
	DefaultBaseURL = "https://tienda-kxep.onrender.com/api"

	categoriesKey = "categories"
)

// Options configures a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 for unlimited
	CacheTTL  time.Duration
}

// Client talks to the catalog REST API. Admin calls authenticate with the
// token held by its credentials.Holder.
type Client struct {
	BaseURL     string
	credentials *credentials.Holder
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       *cache.Cache
}

// NewClient creates a new catalog client
func NewClient(holder *credentials.Holder, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Client{
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		credentials: holder,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(limit, 2),
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

// Credentials returns the holder the client authenticates with
func (c *Client) Credentials() *credentials.Holder {
	return c.credentials
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

// do sends the request and decodes a JSON answer into out, when out is not nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.BaseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth {
		token := c.credentials.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNoResponse, r.method, r.path, err)
	}
	defer resp.Body.Close()

	slog.Debug("Catalog request", "method", r.method, "path", r.path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s response: %w", r.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}
