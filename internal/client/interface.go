// internal/client/interface.go
package client

import (
	"context"
	"encoding/json"
	"net/url"
)

type RedditClientInterface interface {
	FetchJSON(ctx context.Context, url string) (json.RawMessage, error)
	PostForm(ctx context.Context, ep Endpoint, form url.Values) (json.RawMessage, error)
	FetchMoreComments(ctx context.Context, postID string, commentIDs []string) (json.RawMessage, error)
	FilterURL(ep Endpoint, query string, sort Sort, before, after string) (string, error)
	URL(ep Endpoint, params url.Values) string
}

var _ RedditClientInterface = (*RedditClient)(nil)
