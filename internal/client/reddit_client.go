// internal/client/reddit_client.go
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"reddit-client/internal/config"
	"reddit-client/internal/metrics"
	"reddit-client/internal/ratelimit"
	"reddit-client/pkg/utils"
)

type RedditClient struct {
	client    *utils.RetryableClient
	userAgent string
	floor     *rate.Limiter
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	baseURL string
	tokens  TokenSource
	limiter ratelimit.Limiter
}

// TokenSource hands out a bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a token that never expires.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

type Option func(*RedditClient)

func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *RedditClient) { c.limiter = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *RedditClient) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *RedditClient) { c.metrics = m }
}

// WithHTTPClient replaces the client built from the proxy configuration.
func WithHTTPClient(hc *utils.RetryableClient) Option {
	return func(c *RedditClient) { c.client = hc }
}

func NewRedditClient(cfg *config.Config, opts ...Option) (*RedditClient, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("REDDIT_USER_AGENT environment variable is required")
	}

	c := &RedditClient{
		userAgent: cfg.UserAgent,
		baseURL:   strings.TrimRight(cfg.RedditBaseURL, "/"),
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = ratelimit.New(cfg.LimiterMode())
	}

	if cfg.RequestsPerMinute > 0 {
		c.floor = buildFloor(cfg.RequestsPerMinute, cfg.RateLimitBurst)
	}

	if c.client == nil {
		hc, err := utils.NewRetryableClient(utils.ClientOptions{
			ProxyURLs:        cfg.ProxyURLs,
			MaxRetries:       cfg.MaxRetries,
			Timeout:          cfg.RequestTimeout,
			RandomUserAgents: cfg.RandomUserAgents,
			Logger:           c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.client = hc
	}

	c.logger.Info().
		Str("base_url", c.baseURL).
		Int("proxies", len(cfg.ProxyURLs)).
		Int("rpm_floor", cfg.RequestsPerMinute).
		Msg("reddit client initialised")

	return c, nil
}

// buildFloor is a client side ceiling applied on top of the server quota.
func buildFloor(requestsPerMinute, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 10
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), burst)
}

func (r *RedditClient) BaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseURL
}

// Authorize switches the client to baseURL and attaches a token from ts to
// every subsequent request.
func (r *RedditClient) Authorize(baseURL string, ts TokenSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURL = strings.TrimRight(baseURL, "/")
	r.tokens = ts
}

func (r *RedditClient) Authenticated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tokens != nil
}

func (r *RedditClient) Limiter() ratelimit.Limiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiter
}

func (r *RedditClient) SetLimiter(l ratelimit.Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiter = l
}

func (r *RedditClient) FilterURL(ep Endpoint, query string, sort Sort, before, after string) (string, error) {
	return BuildFilterURL(r.BaseURL(), ep, query, sort, before, after)
}

// URL resolves ep against the current base with the given query parameters.
func (r *RedditClient) URL(ep Endpoint, params url.Values) string {
	u := r.BaseURL() + ep.Path()
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (r *RedditClient) FetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return r.do(req)
}

// PostForm sends a write request. The API reports validation failures inside a
// 200 response, those come back as *APIError.
func (r *RedditClient) PostForm(ctx context.Context, ep Endpoint, form url.Values) (json.RawMessage, error) {
	if form == nil {
		form = url.Values{}
	}
	form.Set("api_type", "json")

	target := r.BaseURL() + "/" + strings.Trim(string(ep), "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := r.do(req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		JSON struct {
			Errors [][]string `json:"errors"`
		} `json:"json"`
	}
	if json.Unmarshal(body, &envelope) == nil && len(envelope.JSON.Errors) > 0 {
		return nil, &APIError{Endpoint: ep, Errors: envelope.JSON.Errors}
	}

	return body, nil
}

// FetchMoreComments expands the children of a "more" stub.
func (r *RedditClient) FetchMoreComments(ctx context.Context, postID string, commentIDs []string) (json.RawMessage, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}

	fullPostID := postID
	if !strings.HasPrefix(fullPostID, "t3_") {
		fullPostID = "t3_" + postID
	}

	params := url.Values{
		"api_type":       {"json"},
		"link_id":        {fullPostID},
		"children":       {strings.Join(commentIDs, ",")},
		"limit_children": {"false"},
		"sort":           {"new"},
		"raw_json":       {"1"},
	}

	r.logger.Debug().Str("post", postID).Int("ids", len(commentIDs)).Msg("fetching more comments")

	return r.FetchJSON(ctx, r.URL(MoreChildren, params))
}

func (r *RedditClient) do(req *http.Request) (json.RawMessage, error) {
	ctx := req.Context()
	limiter := r.Limiter()

	req.Header.Set("User-Agent", r.userAgent)
	r.mu.RLock()
	tokens := r.tokens
	r.mu.RUnlock()
	if tokens != nil {
		token, err := tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("access token: %w", err)
		}
		req.Header.Set("Authorization", "bearer "+token)
	}

	// every attempt, retries included, is gated and feeds the quota back
	var gateErr error
	hooks := utils.Hooks{
		Before: func(ctx context.Context) error {
			gateErr = r.gate(ctx, limiter)
			return gateErr
		},
		After: func(resp *http.Response) {
			if !limiter.ShouldUpdate() {
				return
			}
			if t, ok := ratelimit.ParseHeaders(resp.Header, r.now()); ok {
				limiter.Update(t)
				r.metrics.SetRemaining(t.Remaining)
			}
		},
	}

	start := r.now()
	resp, body, err := r.client.DoWithHooks(req, hooks)
	dur := r.now().Sub(start)
	if gateErr != nil {
		return nil, gateErr
	}
	if err != nil {
		r.metrics.ObserveRequest(0, dur)
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	r.metrics.ObserveRequest(resp.StatusCode, dur)

	r.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("dur", dur).
		Msg("reddit request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return body, nil
}

// gate holds the request until the quota limiter and the client side floor
// allow it.
func (r *RedditClient) gate(ctx context.Context, limiter ratelimit.Limiter) error {
	if limiter.ShouldWait() {
		start := r.now()
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
		waited := r.now().Sub(start)
		r.metrics.ObserveWait(waited)
		r.logger.Debug().Dur("wait", waited).Msg("rate limiter released request")
	}

	if r.floor != nil {
		if err := r.floor.Wait(ctx); err != nil {
			return fmt.Errorf("request floor wait: %w", err)
		}
	}
	return nil
}
