// Package reddit is a typed client for the Reddit JSON API.
//
// A Reddit value is cheap to share. Links (SubredditLink, UserLink) are made
// without any request; Get fetches the full object. Searches return pages that
// chain through Next and Prev, and subreddit feeds stream new posts.
package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"reddit-client/internal/auth"
	"reddit-client/internal/client"
	"reddit-client/internal/config"
	"reddit-client/internal/feed"
	"reddit-client/internal/metrics"
	"reddit-client/internal/models"
	"reddit-client/internal/ratelimit"
	"reddit-client/internal/search"
	"reddit-client/pkg/utils"
)

var ErrNotAuthenticated = errors.New("reddit: this call needs an authenticated client")

type (
	PostSearch      = search.Page[models.PostData, *Post]
	SubredditSearch = search.Page[models.SubredditData, *Subreddit]
	UserSearch      = search.Page[models.UserData, *User]
	PostFeed        = feed.Feed[models.PostData, *Post]
)

type Reddit struct {
	api     *client.RedditClient
	http    *utils.RetryableClient
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Options tune New. A nil Config means config.Default().
type Options struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Metrics    *metrics.Metrics
	HTTPClient *utils.RetryableClient
	Limiter    ratelimit.Limiter
}

type ScriptCredentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// New builds an anonymous client. Without an explicit Limiter the mode comes
// from the configuration.
func New(opts Options) (*Reddit, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	hc := opts.HTTPClient
	if hc == nil {
		var err error
		hc, err = utils.NewRetryableClient(utils.ClientOptions{
			ProxyURLs:        cfg.ProxyURLs,
			MaxRetries:       cfg.MaxRetries,
			Timeout:          cfg.RequestTimeout,
			RandomUserAgents: cfg.RandomUserAgents,
			Logger:           logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
	}

	clientOpts := []client.Option{
		client.WithHTTPClient(hc),
		client.WithLogger(logger),
		client.WithMetrics(opts.Metrics),
	}
	if opts.Limiter != nil {
		clientOpts = append(clientOpts, client.WithLimiter(opts.Limiter))
	}

	api, err := client.NewRedditClient(cfg, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Reddit{
		api:     api,
		http:    hc,
		cfg:     cfg,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// NewScript authenticates as a script app with the password grant. The first
// token is fetched before returning so bad credentials fail here. Requests go
// to the OAuth host and, unless opts.Limiter is set, are batched against the
// server quota.
func NewScript(ctx context.Context, opts Options, creds ScriptCredentials) (*Reddit, error) {
	r, err := New(opts)
	if err != nil {
		return nil, err
	}

	authenticator, err := auth.NewAuthenticator(r.http, r.cfg.RedditBaseURL, r.cfg.UserAgent, auth.GrantPassword, auth.Credentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Username:     creds.Username,
		Password:     creds.Password,
	})
	if err != nil {
		return nil, err
	}

	if _, err := authenticator.Token(ctx); err != nil {
		return nil, err
	}

	r.api.Authorize(r.cfg.OAuthBaseURL, authenticator)
	if opts.Limiter == nil {
		r.api.SetLimiter(ratelimit.NewBatched())
	}

	r.logger.Info().Str("username", creds.Username).Msg("authenticated as script app")
	return r, nil
}

// NewFromConfig authenticates when the configuration carries script
// credentials and stays anonymous otherwise.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts Options) (*Reddit, error) {
	opts.Config = cfg
	if opts.Limiter == nil && cfg.RateLimitMode != "" {
		opts.Limiter = ratelimit.New(cfg.LimiterMode())
	}

	if !cfg.Authenticated() {
		return New(opts)
	}
	return NewScript(ctx, opts, ScriptCredentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Username:     cfg.Username,
		Password:     cfg.Password,
	})
}

func RateLimiterOff() ratelimit.Limiter { return ratelimit.Off{} }

func RateLimiterBatched() ratelimit.Limiter { return ratelimit.NewBatched() }

func RateLimiterPaced() ratelimit.Limiter { return ratelimit.NewPaced() }

// WithRateLimiter swaps the limiter for every later request.
func (r *Reddit) WithRateLimiter(l ratelimit.Limiter) *Reddit {
	r.api.SetLimiter(l)
	return r
}

// Client exposes the underlying transport for callers that build their own requests.
func (r *Reddit) Client() *client.RedditClient { return r.api }

func (r *Reddit) Authenticated() bool { return r.api.Authenticated() }

func (r *Reddit) Me(ctx context.Context) (models.MeResponse, error) {
	if !r.api.Authenticated() {
		return models.MeResponse{}, ErrNotAuthenticated
	}

	raw, err := r.api.FetchJSON(ctx, r.api.URL(client.Me, nil))
	if err != nil {
		return models.MeResponse{}, err
	}
	return client.DecodeJSON[models.MeResponse](raw)
}

// Search looks for posts across the whole site.
func (r *Reddit) Search(ctx context.Context, query string, sort client.Sort) (*PostSearch, error) {
	return search.New(ctx, r.api, r.bindPost, client.Search, query, sort)
}

func (r *Reddit) SearchSubreddits(ctx context.Context, query string, sort client.Sort) (*SubredditSearch, error) {
	return search.New(ctx, r.api, r.bindSubreddit, client.SubredditsSearch, query, sort)
}

func (r *Reddit) SearchUsers(ctx context.Context, query string, sort client.Sort) (*UserSearch, error) {
	return search.New(ctx, r.api, r.bindUser, client.UsersSearch, query, sort)
}

func (r *Reddit) Subreddit(name string) *SubredditLink {
	return &SubredditLink{r: r, name: strings.TrimPrefix(name, "r/")}
}

func (r *Reddit) User(name string) *UserLink {
	return &UserLink{r: r, name: strings.TrimPrefix(strings.TrimPrefix(name, "u/"), "/u/")}
}

// Submission fetches a post and its top level comments by ID, with or without
// the t3_ prefix.
func (r *Reddit) Submission(ctx context.Context, id string) (*Submission, error) {
	id = strings.TrimPrefix(id, models.KindLink+"_")
	return r.submission(ctx, r.api.URL(client.Submission.ID(id), url.Values{"raw_json": {"1"}}))
}

// SubmissionFromLink fetches a submission from its permalink. Only the path of
// link is used; the host is always the client's current base.
func (r *Reddit) SubmissionFromLink(ctx context.Context, link string) (*Submission, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("parse permalink: %w", err)
	}

	path := strings.TrimSuffix(strings.TrimRight(u.Path, "/"), ".json")
	if !strings.Contains(path, "/comments/") {
		return nil, fmt.Errorf("not a submission permalink: %s", link)
	}

	return r.submission(ctx, r.api.BaseURL()+path+".json?raw_json=1")
}

func (r *Reddit) submission(ctx context.Context, target string) (*Submission, error) {
	raw, err := r.api.FetchJSON(ctx, target)
	if err != nil {
		return nil, err
	}
	return r.bindSubmission(raw)
}

// newFeed builds a feed with the configured defaults, overridden by opts.
func (r *Reddit) newFeed(ep client.Endpoint, opts []feed.Option) *PostFeed {
	base := []feed.Option{
		feed.WithPollInterval(r.cfg.FeedPollInterval),
		feed.WithMaxRetries(r.cfg.FeedMaxRetries),
		feed.WithLogger(r.logger),
		feed.WithMetrics(r.metrics),
	}
	return feed.New(r.api, r.bindPost, ep, append(base, opts...)...)
}

// list fetches the first page of a listing endpoint.
func list[R, T any](ctx context.Context, r *Reddit, ep client.Endpoint, convert func(R) T) ([]T, error) {
	items, _, err := search.Fetch(ctx, r.api, convert, search.Query{Endpoint: ep}, "", "")
	return items, err
}

// about fetches a single {kind, data} object.
func about[T any](ctx context.Context, r *Reddit, ep client.Endpoint) (T, error) {
	raw, err := r.api.FetchJSON(ctx, r.api.URL(ep, url.Values{"raw_json": {"1"}}))
	if err != nil {
		var zero T
		return zero, err
	}

	thing, err := client.DecodeJSON[models.Thing[T]](raw)
	return thing.Data, err
}

// postForm sends a write request and decodes the json.data part of the answer.
func postForm[T any](ctx context.Context, r *Reddit, ep client.Endpoint, form url.Values) (T, error) {
	var zero T
	if !r.api.Authenticated() {
		return zero, ErrNotAuthenticated
	}

	raw, err := r.api.PostForm(ctx, ep, form)
	if err != nil || len(raw) == 0 {
		return zero, err
	}

	envelope, err := client.DecodeJSON[apiResponse[T]](raw)
	if err != nil {
		return zero, err
	}
	return envelope.JSON.Data, nil
}

type apiResponse[T any] struct {
	JSON struct {
		Data T `json:"data"`
	} `json:"json"`
}
