package scraper_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-client/internal/client"
	"reddit-client/internal/models"
	"reddit-client/internal/parser"
	"reddit-client/internal/scraper"
	"reddit-client/testing/fixtures"
	"reddit-client/testing/mocks"
)

type item map[string]any

func listing(kind, after string, items ...item) json.RawMessage {
	children := make([]map[string]any, 0, len(items))
	for _, it := range items {
		children = append(children, map[string]any{"kind": kind, "data": it})
	}
	var a any
	if after != "" {
		a = after
	}
	body, _ := json.Marshal(map[string]any{
		"kind": "Listing",
		"data": map[string]any{"children": children, "after": a, "before": nil},
	})
	return body
}

func post(id string, created int64) item {
	return item{"id": id, "name": "t3_" + id, "title": "post " + id, "created_utc": created, "permalink": "/r/golang/comments/" + id + "/"}
}

func newService(mc *mocks.MockRedditClient) scraper.ScraperService {
	return scraper.NewScraperService(mc, parser.NewRedditParser(), scraper.Settings{DefaultPostLimit: 25, DefaultCommentLimit: 50})
}

func ids(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestScrapeSubredditStopsAtSince(t *testing.T) {
	fetches := 0
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			fetches++
			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "/r/golang/new.json", u.Path)
			assert.Equal(t, "new", u.Query().Get("sort"))

			switch u.Query().Get("after") {
			case "":
				return listing("t3", "t3_b", post("a", 300), post("b", 200)), nil
			case "t3_b":
				return listing("t3", "t3_d", post("c", 150), post("d", 50)), nil
			}
			return nil, fmt.Errorf("unexpected request %s", raw)
		},
	}

	posts, err := newService(mc).ScrapeSubreddit(context.Background(), "golang", 100, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(posts))
	assert.Equal(t, 2, fetches, "older post ends the walk")
}

func TestScrapeSubredditDefaultLimit(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			return listing("t3", "t3_z", post("a", 3), post("b", 2), post("c", 1)), nil
		},
	}
	svc := scraper.NewScraperService(mc, parser.NewRedditParser(), scraper.Settings{DefaultPostLimit: 2})

	posts, err := svc.ScrapeSubreddit(context.Background(), "golang", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(posts))
}

func TestScrapeSubredditUnlimitedWalksAllPages(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			switch u.Query().Get("after") {
			case "":
				return listing("t3", "p2", post("a", 3)), nil
			case "p2":
				return listing("t3", "p3", post("b", 2)), nil
			default:
				return listing("t3", "", post("c", 1)), nil
			}
		},
	}

	posts, err := newService(mc).ScrapeSubreddit(context.Background(), "golang", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(posts))
}

func TestScrapeSubredditSurfacesStatusErrors(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			return nil, &client.HTTPStatusError{URL: raw, StatusCode: 404, Status: "404 Not Found"}
		},
	}

	_, err := newService(mc).ScrapeSubreddit(context.Background(), "nope", 0, 10)
	var statusErr *client.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 404, statusErr.StatusCode)
}

func TestSearchBuildsScopedQuery(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			assert.Equal(t, "/r/golang/search.json", u.Path)
			assert.Equal(t, "generics author:rob", u.Query().Get("q"))
			assert.Equal(t, "top", u.Query().Get("sort"))
			assert.Equal(t, "on", u.Query().Get("restrict_sr"))
			return listing("t3", "", post("old", 10), post("new", 500), post("mid", 200)), nil
		},
	}

	posts, err := newService(mc).Search(context.Background(), scraper.SearchParams{
		Query:     "generics",
		Subreddit: "golang",
		Author:    "rob",
		Sort:      client.Top,
	}, 100, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid"}, ids(posts), "relevance ordered results are filtered, not cut")
}

func TestSearchWholeSite(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			assert.Equal(t, "/search.json", u.Path)
			return listing("t3", "", post("a", 1)), nil
		},
	}

	posts, err := newService(mc).Search(context.Background(), scraper.SearchParams{Query: "go", Sort: client.Relevance}, 0, 5)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestSearchSubreddits(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			assert.Equal(t, "/subreddits/search.json", u.Path)
			return listing("t5", "", item{"display_name": "golang", "subscribers": 250000, "url": "/r/golang/"}), nil
		},
	}

	subs, err := newService(mc).SearchSubreddits(context.Background(), "go", 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "golang", subs[0].Name)
	assert.Equal(t, 250000, subs[0].Subscribers)
}

func userClient(t *testing.T, commentsErr error) *mocks.MockRedditClient {
	return &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			switch u.Path {
			case "/user/spez/about.json":
				return fixtures.MustLoad(t, "user_about.json"), nil
			case "/user/spez/submitted.json":
				return listing("t3", "", post("p1", 300), post("p2", 50)), nil
			case "/user/spez/comments.json":
				if commentsErr != nil {
					return nil, commentsErr
				}
				return listing("t1", "",
					item{"id": "k1", "body": "first", "link_id": "t3_p1", "created_utc": 400},
					item{"id": "k2", "body": "second", "link_id": "t3_p9", "created_utc": 350},
				), nil
			}
			return nil, fmt.Errorf("unexpected request %s", raw)
		},
	}
}

func TestScrapeUserActivity(t *testing.T) {
	activity, err := newService(userClient(t, nil)).ScrapeUserActivity(context.Background(), "spez", 100, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, "spez", activity.UserInfo.Username)
	assert.True(t, activity.UserInfo.IsModerator)
	require.Len(t, activity.Posts, 1, "since cuts the older post")
	assert.Equal(t, "p1", activity.Posts[0].ID)
	require.Len(t, activity.Comments, 1, "comment limit")
	assert.Equal(t, "p1", activity.Comments[0].PostID)
}

func TestScrapeUserActivityPropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := newService(userClient(t, boom)).ScrapeUserActivity(context.Background(), "spez", 0, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch user comments")
}

func submissionClient(t *testing.T, moreErr error) *mocks.MockRedditClient {
	return &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			assert.Equal(t, "/comments/abc123.json", u.Path)
			return fixtures.MustLoad(t, "submission.json"), nil
		},
		FetchMoreCommentsFunc: func(ctx context.Context, postID string, commentIDs []string) (json.RawMessage, error) {
			assert.Equal(t, "abc123", postID)
			assert.Equal(t, []string{"c5", "c6"}, commentIDs)
			if moreErr != nil {
				return nil, moreErr
			}
			return fixtures.MustLoad(t, "morechildren.json"), nil
		},
	}
}

func TestScrapePostExpandsMoreComments(t *testing.T) {
	detail, err := newService(submissionClient(t, nil)).ScrapePost(context.Background(), "t3_abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", detail.Post.ID)
	require.Len(t, detail.Comments, 3)

	first := detail.Comments[0]
	assert.False(t, first.HasMore)
	assert.Empty(t, first.MoreIDs)
	require.Len(t, first.Replies, 2)
	assert.Equal(t, "c2", first.Replies[0].ID)
	assert.Equal(t, "c5", first.Replies[1].ID)
	require.Len(t, first.Replies[1].Replies, 1)
	assert.Equal(t, "c6", first.Replies[1].Replies[0].ID)

	assert.True(t, detail.Comments[2].IsMore, "continue links stay in place")
}

func TestScrapePostKeepsPlaceholderWhenExpansionFails(t *testing.T) {
	detail, err := newService(submissionClient(t, errors.New("503"))).ScrapePost(context.Background(), "abc123")
	require.NoError(t, err)

	first := detail.Comments[0]
	assert.True(t, first.HasMore)
	assert.Equal(t, []string{"c5", "c6"}, first.MoreIDs)
	require.Len(t, first.Replies, 2)
	assert.True(t, first.Replies[1].IsMore)
}

func TestScrapePostParseError(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			return json.RawMessage(`[]`), nil
		},
	}
	mp := &mocks.MockParser{
		ParsePostFunc: func(ctx context.Context, data json.RawMessage) (models.PostDetail, error) {
			return models.PostDetail{}, errors.New("bad shape")
		},
	}
	svc := scraper.NewScraperService(mc, mp, scraper.Settings{})

	_, err := svc.ScrapePost(context.Background(), "abc123")
	assert.EqualError(t, err, "bad shape")
}

func TestWatchSubredditStreamsNewPosts(t *testing.T) {
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			u, _ := url.Parse(raw)
			switch u.Query().Get("before") {
			case "":
				return listing("t3", "", post("2", 20)), nil
			case "t3_2":
				return listing("t3", "", post("4", 40), post("3", 30)), nil
			default:
				return listing("t3", ""), nil
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := newService(mc).WatchSubreddit(ctx, "golang", time.Millisecond)

	var got []string
	for len(got) < 2 {
		select {
		case p := <-w.Posts:
			got = append(got, p.ID)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %v", got)
		}
	}
	assert.Equal(t, []string{"3", "4"}, got)
	assert.Equal(t, "t3_4", w.LastSeen())

	cancel()
	for range w.Posts {
	}
	assert.NoError(t, w.Err())
}

func TestWatchSubredditHonoursZeroRetries(t *testing.T) {
	var calls atomic.Int32
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			if calls.Add(1) == 1 {
				return listing("t3", "", post("1", 10)), nil
			}
			return nil, errors.New("upstream down")
		},
	}
	svc := scraper.NewScraperService(mc, parser.NewRedditParser(), scraper.Settings{FeedMaxRetries: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	w := svc.WatchSubreddit(ctx, "golang", time.Millisecond)

	for range w.Posts {
	}
	assert.ErrorContains(t, w.Err(), "upstream down")
	assert.Equal(t, int32(2), calls.Load())
}

func TestScrapePostNestsRepliesAcrossBatches(t *testing.T) {
	ids := make([]string, 0, 101)
	for i := 0; i <= 100; i++ {
		ids = append(ids, fmt.Sprintf("k%d", i))
	}
	submission, _ := json.Marshal([]any{
		map[string]any{"kind": "Listing", "data": map[string]any{"children": []any{
			map[string]any{"kind": "t3", "data": map[string]any{"id": "big", "name": "t3_big", "title": "busy thread"}},
		}}},
		map[string]any{"kind": "Listing", "data": map[string]any{"children": []any{
			map[string]any{"kind": "more", "data": map[string]any{"id": "m1", "name": "t1_m1", "parent_id": "t3_big", "count": 101, "children": ids}},
		}}},
	})

	var requests atomic.Int32
	mc := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, raw string) (json.RawMessage, error) {
			return submission, nil
		},
		FetchMoreCommentsFunc: func(ctx context.Context, postID string, commentIDs []string) (json.RawMessage, error) {
			requests.Add(1)
			things := make([]any, 0, len(commentIDs))
			for _, id := range commentIDs {
				parent := "t3_big"
				if id == "k100" {
					parent = "t1_k0"
				}
				things = append(things, map[string]any{"kind": "t1", "data": map[string]any{"id": id, "name": "t1_" + id, "parent_id": parent, "body": id}})
			}
			return json.Marshal(map[string]any{"json": map[string]any{"data": map[string]any{"things": things}}})
		},
	}

	detail, err := newService(mc).ScrapePost(context.Background(), "big")
	require.NoError(t, err)

	assert.Equal(t, int32(2), requests.Load())
	require.Len(t, detail.Comments, 100)
	assert.Equal(t, "k0", detail.Comments[0].ID)
	require.Len(t, detail.Comments[0].Replies, 1)
	assert.Equal(t, "k100", detail.Comments[0].Replies[0].ID)
	for _, c := range detail.Comments {
		assert.NotEqual(t, "k100", c.ID)
	}
}
