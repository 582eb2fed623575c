// internal/scraper/service.go
package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reddit-client/internal/client"
	"reddit-client/internal/feed"
	"reddit-client/internal/metrics"
	"reddit-client/internal/models"
	"reddit-client/internal/parser"
	"reddit-client/internal/search"
)

// ScraperService defines the interface for scraping Reddit content
type ScraperService interface {
	ScrapeSubreddit(ctx context.Context, subreddit string, sinceTimestamp int64, limit int) ([]models.Post, error)
	ScrapeUserActivity(ctx context.Context, username string, sinceTimestamp int64, postLimit, commentLimit int) (models.UserActivity, error)
	ScrapePost(ctx context.Context, postID string) (models.PostDetail, error)
	Search(ctx context.Context, params SearchParams, sinceTimestamp int64, limit int) ([]models.Post, error)
	SearchSubreddits(ctx context.Context, query string, limit int) ([]models.SubredditSummary, error)
	WatchSubreddit(ctx context.Context, subreddit string, interval time.Duration) *Watch
}

// SearchParams narrows a post search. An empty Subreddit searches the whole site.
type SearchParams struct {
	Query     string
	Subreddit string
	Author    string
	Sort      client.Sort
}

// Settings carries the defaults applied when a caller passes no limit.
// FeedMaxRetries is passed to every watch as is: zero stops a watch on its
// first failed poll, a negative value keeps the feed default.
type Settings struct {
	DefaultPostLimit    int
	DefaultCommentLimit int
	FeedPollInterval    time.Duration
	FeedMaxRetries      int
	Logger              zerolog.Logger
	Metrics             *metrics.Metrics
}

type scraperService struct {
	client   client.RedditClientInterface
	parser   parser.ParserInterface
	settings Settings
	logger   zerolog.Logger
}

func NewScraperService(client client.RedditClientInterface, parser parser.ParserInterface, settings Settings) ScraperService {
	if settings.DefaultPostLimit <= 0 {
		settings.DefaultPostLimit = 25
	}
	if settings.DefaultCommentLimit <= 0 {
		settings.DefaultCommentLimit = 50
	}

	return &scraperService{
		client:   client,
		parser:   parser,
		settings: settings,
		logger:   settings.Logger.With().Str("component", "scraper").Logger(),
	}
}

// window decides how far a listing is walked.
//
//	limit > 0           at most limit items
//	limit == -1         every page, bounded by search.MaxCollectPages
//	limit == 0, since   every item newer than since
//	limit == 0          the default limit
type window struct {
	since int64
	limit int
	// newestFirst listings stop at the first item older than since; other
	// orders skip it and keep going.
	newestFirst bool
}

func (s *scraperService) window(since int64, limit, def int, newestFirst bool) window {
	if limit == 0 && since == 0 {
		limit = def
	}
	return window{since: since, limit: limit, newestFirst: newestFirst}
}

func collect[R, T any](ctx context.Context, first *search.Page[R, T], w window, created func(T) time.Time) ([]T, error) {
	var out []T
	err := first.Walk(ctx, func(page *search.Page[R, T]) bool {
		for _, item := range page.Results() {
			if w.since > 0 && created(item).Unix() < w.since {
				if w.newestFirst {
					return false
				}
				continue
			}
			out = append(out, item)
			if w.limit > 0 && len(out) >= w.limit {
				return false
			}
		}
		return true
	})
	return out, err
}

func postCreated(p models.Post) time.Time { return p.CreatedAt }

// ScrapeSubreddit retrieves the newest posts of a subreddit
func (s *scraperService) ScrapeSubreddit(ctx context.Context, subreddit string, sinceTimestamp int64, limit int) ([]models.Post, error) {
	start := time.Now()

	first, err := search.New(ctx, s.client, parser.ToPost, client.SubredditNew.Subreddit(subreddit), "", client.New)
	if err != nil {
		return nil, fmt.Errorf("fetch subreddit: %w", err)
	}

	posts, err := collect(ctx, first, s.window(sinceTimestamp, limit, s.settings.DefaultPostLimit, true), postCreated)
	if err != nil {
		return posts, fmt.Errorf("fetch subreddit page: %w", err)
	}

	s.logger.Info().
		Str("subreddit", subreddit).
		Int("posts", len(posts)).
		Dur("elapsed", time.Since(start)).
		Msg("subreddit scraped")
	return posts, nil
}

func (s *scraperService) Search(ctx context.Context, params SearchParams, sinceTimestamp int64, limit int) ([]models.Post, error) {
	ep := client.Search
	if params.Subreddit != "" {
		ep = client.SubredditSearch.Subreddit(params.Subreddit)
	}

	query := params.Query
	if params.Author != "" {
		query = strings.TrimSpace(query + " author:" + params.Author)
	}

	first, err := search.New(ctx, s.client, parser.ToPost, ep, query, params.Sort)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	posts, err := collect(ctx, first, s.window(sinceTimestamp, limit, s.settings.DefaultPostLimit, params.Sort == client.New), postCreated)
	if err != nil {
		return posts, fmt.Errorf("search page: %w", err)
	}

	s.logger.Debug().Str("query", query).Str("endpoint", string(ep)).Int("posts", len(posts)).Msg("search finished")
	return posts, nil
}

func (s *scraperService) SearchSubreddits(ctx context.Context, query string, limit int) ([]models.SubredditSummary, error) {
	first, err := search.New(ctx, s.client, parser.ToSubredditSummary, client.SubredditsSearch, query, client.Relevance)
	if err != nil {
		return nil, fmt.Errorf("search subreddits: %w", err)
	}

	return collect(ctx, first, s.window(0, limit, s.settings.DefaultPostLimit, false), func(sr models.SubredditSummary) time.Time {
		return sr.CreatedAt
	})
}

func (s *scraperService) ScrapeUserActivity(ctx context.Context, username string, sinceTimestamp int64, postLimit, commentLimit int) (models.UserActivity, error) {
	activity := models.UserActivity{}

	raw, err := s.client.FetchJSON(ctx, s.client.URL(client.UserAbout.User(username), nil))
	if err != nil {
		return activity, fmt.Errorf("fetch user info: %w", err)
	}

	about, err := client.DecodeJSON[models.Thing[models.UserData]](raw)
	if err != nil {
		return activity, fmt.Errorf("parse user info: %w", err)
	}
	activity.UserInfo = parser.ToUserInfo(about.Data)

	var (
		wg          sync.WaitGroup
		postsErr    error
		commentsErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		first, err := search.New(ctx, s.client, parser.ToUserPost, client.UserSubmitted.User(username), "", client.New)
		if err == nil {
			activity.Posts, err = collect(ctx, first, s.window(sinceTimestamp, postLimit, s.settings.DefaultPostLimit, true),
				func(p models.UserPost) time.Time { return p.CreatedAt })
		}
		if err != nil {
			postsErr = fmt.Errorf("fetch user posts: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		first, err := search.New(ctx, s.client, parser.ToUserComment, client.UserComments.User(username), "", client.New)
		if err == nil {
			activity.Comments, err = collect(ctx, first, s.window(sinceTimestamp, commentLimit, s.settings.DefaultCommentLimit, true),
				func(c models.UserComment) time.Time { return c.CreatedAt })
		}
		if err != nil {
			commentsErr = fmt.Errorf("fetch user comments: %w", err)
		}
	}()

	wg.Wait()

	if postsErr != nil {
		return activity, postsErr
	}
	if commentsErr != nil {
		return activity, commentsErr
	}
	return activity, nil
}

// Watch is a running subreddit feed.
type Watch struct {
	Posts <-chan models.Post
	feed  *feed.Feed[models.PostData, models.Post]
}

// Err reports why the feed stopped once Posts is closed.
func (w *Watch) Err() error { return w.feed.Err() }

func (w *Watch) LastSeen() string { return w.feed.LastSeen() }

// WatchSubreddit streams posts created after the call. A zero interval uses
// the configured poll interval.
func (s *scraperService) WatchSubreddit(ctx context.Context, subreddit string, interval time.Duration) *Watch {
	if interval <= 0 {
		interval = s.settings.FeedPollInterval
	}
	opts := []feed.Option{
		feed.WithLogger(s.logger),
		feed.WithMetrics(s.settings.Metrics),
		feed.WithPollInterval(interval),
	}
	if s.settings.FeedMaxRetries >= 0 {
		opts = append(opts, feed.WithMaxRetries(s.settings.FeedMaxRetries))
	}

	f := feed.New(s.client, parser.ToPost, client.SubredditNew.Subreddit(subreddit), opts...)
	return &Watch{Posts: f.Start(ctx), feed: f}
}
