// Package api is the HTTP client for the Rick and Morty REST catalog.
//
// The client exposes one typed Endpoint per resource:
//
//	c := api.New(api.WithBaseURL("https://rickandmortyapi.com/api"))
//	page, err := c.Characters().List(ctx, 1)
//
// Every request waits on a client-side token bucket first. Failures are
// wrapped in the package error class and can be classified with KindOf.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/roach88/rmcat/internal/metrics"
)

// DefaultBaseURL is the public catalog API.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

const (
	defaultTimeout   = 10 * time.Second
	defaultRate      = 5
	defaultBurst     = 5
	defaultUserAgent = "rmcat/1.0"
	maxErrorBody     = 4 << 10
)

// Client issues requests against the catalog API.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *zap.Logger
	metrics   *metrics.Collectors
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (no trailing slash needed).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRateLimit allows rps requests per second with the given burst.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a Client with sane defaults.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(defaultRate), defaultBurst),
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Characters returns the /character endpoint.
func (c *Client) Characters() *Endpoint[CharacterDTO] {
	return &Endpoint[CharacterDTO]{client: c, path: "character"}
}

// Locations returns the /location endpoint.
func (c *Client) Locations() *Endpoint[LocationDTO] {
	return &Endpoint[LocationDTO]{client: c, path: "location"}
}

// Episodes returns the /episode endpoint.
func (c *Client) Episodes() *Endpoint[EpisodeDTO] {
	return &Endpoint[EpisodeDTO]{client: c, path: "episode"}
}

// Endpoint is a typed view of one catalog resource.
type Endpoint[T any] struct {
	client *Client
	path   string
}

// Path returns the resource path, e.g. "character".
func (e *Endpoint[T]) Path() string {
	return e.path
}

// List fetches one page of the resource.
func (e *Endpoint[T]) List(ctx context.Context, page int) (Page[T], error) {
	var out Page[T]
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	err := e.client.get(ctx, e.path, e.path, q, &out)
	return out, err
}

// Get fetches a single item by id.
func (e *Endpoint[T]) Get(ctx context.Context, id int) (T, error) {
	var out T
	err := e.client.get(ctx, e.path+"/:id", e.path+"/"+strconv.Itoa(id), nil, &out)
	return out, err
}

// Search fetches one page of items whose name contains name.
func (e *Endpoint[T]) Search(ctx context.Context, name string, page int) (Page[T], error) {
	var out Page[T]
	q := url.Values{}
	q.Set("name", name)
	q.Set("page", strconv.Itoa(page))
	err := e.client.get(ctx, e.path+"?name", e.path, q, &out)
	return out, err
}

// get performs a GET and decodes a JSON body into out. label is the
// low-cardinality endpoint name used for metrics.
func (c *Client) get(ctx context.Context, label, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Error.Wrap(ctxErr)
		}
		// The limiter refuses to wait past the context deadline without
		// wrapping context.DeadlineExceeded.
		return Error.Wrap(fmt.Errorf("%w: %v", context.DeadlineExceeded, err))
	}

	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPIRequest(label, 0, time.Since(start))
		c.logger.Debug("api request failed", zap.String("url", u), zap.Error(err))
		return Error.Wrap(err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveAPIRequest(label, resp.StatusCode, time.Since(start))
	c.logger.Debug("api request",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Error.Wrap(&StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    parseErrorBody(body),
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Error.Wrap(&DecodeError{Err: fmt.Errorf("%s: %w", path, err)})
	}
	return nil
}
