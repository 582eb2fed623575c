package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-client/internal/config"
)

func TestNewServesMetricsAndErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Ratelimit-Remaining", "99.0")
		w.Header().Set("X-Ratelimit-Used", "1")
		w.Header().Set("X-Ratelimit-Reset", "60")
		_, _ = w.Write([]byte(`{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"a","name":"t3_a","title":"hello","created_utc":1700000000}}]}}`))
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.RedditBaseURL = upstream.URL
	cfg.RateLimitMode = "batched"

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, a.Client.Authenticated())

	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subreddit?subreddit=golang&limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"hello"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subreddit", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":400,"message":"missing `+"`subreddit`"+` parameter"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `reddit_client_requests_total{code="200"} 1`), body)
	assert.Contains(t, body, "reddit_client_ratelimit_remaining 99")
}
