package reddit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-client/internal/auth"
	"reddit-client/internal/client"
	"reddit-client/internal/config"
	"reddit-client/internal/feed"
	"reddit-client/internal/ratelimit"
	"reddit-client/pkg/reddit"
	"reddit-client/testing/fixtures"
	"reddit-client/testing/mocks"
)

const tokenBody = `{"access_token":"tok","token_type":"bearer","expires_in":3600,"scope":"*"}`

func testConfig(base string) *config.Config {
	cfg := config.Default()
	cfg.UserAgent = "reddit-client-test/1.0"
	cfg.RedditBaseURL = base
	cfg.OAuthBaseURL = base + "/oauth"
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func serve(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func anonymous(t *testing.T, mux *http.ServeMux) *reddit.Reddit {
	t.Helper()
	srv := serve(t, mux)
	r, err := reddit.New(reddit.Options{Config: testConfig(srv.URL)})
	require.NoError(t, err)
	return r
}

func script(t *testing.T, mux *http.ServeMux) *reddit.Reddit {
	t.Helper()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, []byte(tokenBody))
	})
	srv := serve(t, mux)

	r, err := reddit.NewScript(context.Background(), reddit.Options{Config: testConfig(srv.URL)}, reddit.ScriptCredentials{
		ClientID:     "id",
		ClientSecret: "secret",
		Username:     "bot",
		Password:     "hunter2",
	})
	require.NoError(t, err)
	return r
}

func TestSearchChainsPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		assert.Equal(t, "gopher", q.Get("q"))
		assert.Equal(t, "top", q.Get("sort"))

		switch q.Get("after") {
		case "":
			writeJSON(w, mocks.Listing([]string{"t3_a", "t3_b"}, "", "t3_b"))
		case "t3_b":
			writeJSON(w, mocks.Listing([]string{"t3_c"}, "t3_c", ""))
		default:
			t.Errorf("unexpected cursor %q", q.Get("after"))
		}
	})
	r := anonymous(t, mux)
	ctx := context.Background()

	page, err := r.Search(ctx, "gopher", client.Top)
	require.NoError(t, err)
	require.Len(t, page.Results(), 2)
	assert.Equal(t, "t3_a", page.Results()[0].FeedID())
	assert.Equal(t, "post t3_a", page.Results()[0].Title())

	next, err := page.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "t3_c", next.Results()[0].FeedID())

	last, err := next.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestSearchSubredditsAndUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subreddits/search.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, []byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t5","data":{"name":"t5_1","display_name":"golang","subscribers":10}}
		],"before":null,"after":null}}`))
	})
	mux.HandleFunc("/users/search.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, []byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t2","data":{"id":"9","name":"gopher","is_employee":true}}
		],"before":null,"after":null}}`))
	})
	r := anonymous(t, mux)
	ctx := context.Background()

	subs, err := r.SearchSubreddits(ctx, "go", client.Relevance)
	require.NoError(t, err)
	require.Len(t, subs.Results(), 1)
	assert.Equal(t, "golang", subs.Results()[0].Name())
	assert.Equal(t, "t5_1", subs.Results()[0].FeedID())
	assert.Equal(t, 10, subs.Results()[0].Subscribers())

	users, err := r.SearchUsers(ctx, "gopher", client.Relevance)
	require.NoError(t, err)
	require.Len(t, users.Results(), 1)
	assert.Equal(t, "t2_9", users.Results()[0].FeedID())
	assert.True(t, users.Results()[0].IsEmployee())
}

func TestSubredditGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/about.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, fixtures.MustLoad(t, "subreddit_about.json"))
	})
	r := anonymous(t, mux)

	sub, err := r.Subreddit("r/golang").Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "golang", sub.Name())
	assert.Equal(t, "The Go Programming Language", sub.Title())
	assert.Equal(t, 250000, sub.Subscribers())
	assert.Equal(t, time.Unix(1258600000, 0).UTC(), sub.Created())

	u, err := sub.URL()
	require.NoError(t, err)
	assert.Equal(t, "https://www.reddit.com/r/golang/", u.String())
}

func TestSubredditListings(t *testing.T) {
	mux := http.NewServeMux()
	for path, names := range map[string][]string{
		"/r/golang/top.json": {"t3_top"},
		"/r/golang/hot.json": {"t3_hot"},
		"/r/golang/new.json": {"t3_new"},
	} {
		names := names
		mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, mocks.Listing(names, "", ""))
		})
	}
	r := anonymous(t, mux)
	ctx := context.Background()
	sub := r.Subreddit("golang")

	top, err := sub.Top(ctx)
	require.NoError(t, err)
	hot, err := sub.Hot(ctx)
	require.NoError(t, err)
	newest, err := sub.New(ctx)
	require.NoError(t, err)

	assert.Equal(t, "t3_top", top[0].FeedID())
	assert.Equal(t, "t3_hot", hot[0].FeedID())
	assert.Equal(t, "t3_new", newest[0].FeedID())
}

func TestUserGetAndActivity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/spez/about.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, fixtures.MustLoad(t, "user_about.json"))
	})
	mux.HandleFunc("/user/spez/submitted.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, mocks.Listing([]string{"t3_mine"}, "", ""))
	})
	mux.HandleFunc("/user/spez/comments.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, []byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"k1","name":"t1_k1","author":"spez","body":"hello"}}
		]}}`))
	})
	r := anonymous(t, mux)
	ctx := context.Background()

	user, err := r.User("u/spez").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "spez", user.Name())
	assert.Equal(t, "t2_1w72", user.FeedID())
	assert.True(t, user.IsModerator())
	assert.True(t, user.IsVerified())
	assert.True(t, user.IsEmployee())
	assert.True(t, user.HasGold())

	posts, err := user.Submitted(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "t3_mine", posts[0].FeedID())

	comments, err := user.Comments(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hello", comments[0].Body())
	assert.Equal(t, "spez", comments[0].Author().Name())
}

func TestSubmissionByIDAndLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/comments/abc123.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, fixtures.MustLoad(t, "submission.json"))
	})
	mux.HandleFunc("/r/golang/comments/abc123/show_rgolang.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, fixtures.MustLoad(t, "submission.json"))
	})
	r := anonymous(t, mux)
	ctx := context.Background()

	byID, err := r.Submission(ctx, "t3_abc123")
	require.NoError(t, err)

	byLink, err := r.SubmissionFromLink(ctx, "https://www.reddit.com/r/golang/comments/abc123/show_rgolang/")
	require.NoError(t, err)

	for _, s := range []*reddit.Submission{byID, byLink} {
		assert.Equal(t, "Show r/golang: a tiny rate limiter", s.Op().Title())
		assert.Equal(t, "https://www.reddit.com/r/golang/comments/abc123/show_rgolang/", s.Op().URL())
		assert.Equal(t, "golang", s.Op().Subreddit().Name())

		require.Len(t, s.Comments(), 2)
		first := s.Comments()[0]
		assert.Equal(t, "t1_c1", first.Name())
		replies := first.Replies()
		require.Len(t, replies, 1, "more stubs are not bound")
		assert.Equal(t, "Thanks!", replies[0].Body())
	}
}

func TestSubmissionFromLinkRejectsNonPermalinks(t *testing.T) {
	r := anonymous(t, http.NewServeMux())

	_, err := r.SubmissionFromLink(context.Background(), "https://www.reddit.com/r/golang/")
	assert.Error(t, err)
}

func TestNewScriptAuthenticates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/api/v1/me.json", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "bearer tok", req.Header.Get("Authorization"))
		w.Header().Set("X-Ratelimit-Remaining", "598.0")
		w.Header().Set("X-Ratelimit-Used", "2")
		w.Header().Set("X-Ratelimit-Reset", "300")
		writeJSON(w, []byte(`{"id":"b1","name":"bot","inbox_count":3}`))
	})
	var form map[string]string
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, req *http.Request) {
		user, pass, ok := req.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		if assert.NoError(t, req.ParseForm()) {
			form = map[string]string{
				"grant_type": req.PostForm.Get("grant_type"),
				"username":   req.PostForm.Get("username"),
			}
		}
		writeJSON(w, []byte(tokenBody))
	})
	srv := serve(t, mux)
	ctx := context.Background()

	r, err := reddit.NewScript(ctx, reddit.Options{Config: testConfig(srv.URL)}, reddit.ScriptCredentials{
		ClientID: "id", ClientSecret: "secret", Username: "bot", Password: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"grant_type": "password", "username": "bot"}, form)
	assert.True(t, r.Authenticated())

	me, err := r.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bot", me.Name)
	assert.Equal(t, 3, me.InboxCount)

	batched, ok := r.Client().Limiter().(*ratelimit.Batched)
	require.True(t, ok, "script clients batch by default")
	assert.Equal(t, 598, batched.Snapshot().Remaining)
}

func TestNewScriptRejectsBadPassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, []byte(`{"error":"invalid_grant"}`))
	})
	srv := serve(t, mux)

	_, err := reddit.NewScript(context.Background(), reddit.Options{Config: testConfig(srv.URL)}, reddit.ScriptCredentials{
		ClientID: "id", ClientSecret: "secret", Username: "bot", Password: "wrong",
	})
	var authErr *auth.AuthError
	assert.True(t, errors.As(err, &authErr))
}

func TestWritesNeedAuthentication(t *testing.T) {
	r := anonymous(t, http.NewServeMux())
	ctx := context.Background()

	_, err := r.Me(ctx)
	assert.ErrorIs(t, err, reddit.ErrNotAuthenticated)

	_, err = r.Subreddit("golang").Submit(ctx, reddit.SubmitOptions{Title: "t", Text: "b"})
	assert.ErrorIs(t, err, reddit.ErrNotAuthenticated)
}

func TestReplyVoteAndSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/comments/abc123.json", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, fixtures.MustLoad(t, "submission.json"))
	})
	mux.HandleFunc("/oauth/api/comment", func(w http.ResponseWriter, req *http.Request) {
		if assert.NoError(t, req.ParseForm()) {
			assert.Equal(t, "json", req.PostForm.Get("api_type"))
			assert.Equal(t, "t3_abc123", req.PostForm.Get("thing_id"))
			assert.Equal(t, "nice", req.PostForm.Get("text"))
		}
		writeJSON(w, []byte(`{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"r1","name":"t1_r1","body":"nice"}}]}}}`))
	})
	mux.HandleFunc("/oauth/api/vote", func(w http.ResponseWriter, req *http.Request) {
		if assert.NoError(t, req.ParseForm()) {
			assert.Equal(t, "t3_abc123", req.PostForm.Get("id"))
			assert.Equal(t, "1", req.PostForm.Get("dir"))
		}
		writeJSON(w, []byte(`{}`))
	})
	mux.HandleFunc("/oauth/api/submit", func(w http.ResponseWriter, req *http.Request) {
		if assert.NoError(t, req.ParseForm()) && req.PostForm.Get("sr") == "nope" {
			writeJSON(w, []byte(`{"json":{"errors":[["SUBREDDIT_NOEXIST","that subreddit doesn't exist","sr"]]}}`))
			return
		}
		assert.Equal(t, "link", req.PostForm.Get("kind"))
		assert.Equal(t, "https://go.dev", req.PostForm.Get("url"))
		writeJSON(w, []byte(`{"json":{"errors":[],"data":{"id":"new1","name":"t3_new1"}}}`))
	})
	r := script(t, mux)
	ctx := context.Background()

	sub, err := r.Submission(ctx, "abc123")
	require.NoError(t, err)

	reply, err := sub.Op().Reply(ctx, "nice")
	require.NoError(t, err)
	assert.Equal(t, "t1_r1", reply.Name())

	require.NoError(t, sub.Op().Vote(ctx, reddit.Upvote))

	name, err := r.Subreddit("golang").Submit(ctx, reddit.SubmitOptions{Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, "t3_new1", name)

	_, err = r.Subreddit("nope").Submit(ctx, reddit.SubmitOptions{Title: "Go", Text: "x"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "SUBREDDIT_NOEXIST", apiErr.Errors[0][0])
}

func TestSubredditFeedStreamsNewPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		assert.Equal(t, "new", q.Get("sort"))

		switch q.Get("before") {
		case "":
			writeJSON(w, mocks.Listing([]string{"t3_2", "t3_1"}, "", ""))
		case "t3_2":
			writeJSON(w, mocks.Listing([]string{"t3_4", "t3_3"}, "", ""))
		default:
			writeJSON(w, mocks.Listing(nil, "", ""))
		}
	})
	r := anonymous(t, mux)

	f := r.Subreddit("golang").Feed(feed.WithPollInterval(5 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := f.Start(ctx)

	var got []string
	for len(got) < 2 {
		select {
		case p := <-ch:
			got = append(got, p.FeedID())
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %v", got)
		}
	}
	assert.Equal(t, []string{"t3_3", "t3_4"}, got)
}

func TestRateLimiterSelection(t *testing.T) {
	r := anonymous(t, http.NewServeMux())

	assert.Equal(t, ratelimit.Off{}, r.Client().Limiter())

	r.WithRateLimiter(reddit.RateLimiterPaced())
	assert.IsType(t, &ratelimit.Paced{}, r.Client().Limiter())

	r.WithRateLimiter(reddit.RateLimiterBatched())
	assert.IsType(t, &ratelimit.Batched{}, r.Client().Limiter())

	r.WithRateLimiter(reddit.RateLimiterOff())
	assert.Equal(t, ratelimit.Off{}, r.Client().Limiter())
}

func TestNewFromConfigStaysAnonymousWithoutCredentials(t *testing.T) {
	srv := serve(t, http.NewServeMux())
	cfg := testConfig(srv.URL)
	cfg.RateLimitMode = "paced"

	r, err := reddit.NewFromConfig(context.Background(), cfg, reddit.Options{})
	require.NoError(t, err)
	assert.False(t, r.Authenticated())
	assert.IsType(t, &ratelimit.Paced{}, r.Client().Limiter())
}
