// internal/client/endpoint.go
package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Endpoint is an API path template. Placeholders are filled with the methods
// below before the endpoint is turned into a URL.
type Endpoint string

const (
	Search           Endpoint = "search/"
	SubredditSearch  Endpoint = "r/#subreddit/search/"
	SubredditsSearch Endpoint = "subreddits/search/"
	UsersSearch      Endpoint = "users/search/"

	SubredditNew   Endpoint = "r/#subreddit/new/"
	SubredditHot   Endpoint = "r/#subreddit/hot/"
	SubredditTop   Endpoint = "r/#subreddit/top/"
	SubredditAbout Endpoint = "r/#subreddit/about/"

	UserAbout     Endpoint = "user/#user/about/"
	UserSubmitted Endpoint = "user/#user/submitted/"
	UserComments  Endpoint = "user/#user/comments/"

	Submission   Endpoint = "comments/#id/"
	MoreChildren Endpoint = "api/morechildren/"
	Me           Endpoint = "api/v1/me/"
	Comment      Endpoint = "api/comment/"
	Submit       Endpoint = "api/submit/"
	Vote         Endpoint = "api/vote/"
)

func (e Endpoint) Subreddit(name string) Endpoint { return e.fill("#subreddit", name) }

func (e Endpoint) User(name string) Endpoint { return e.fill("#user", name) }

func (e Endpoint) ID(id string) Endpoint { return e.fill("#id", id) }

func (e Endpoint) fill(placeholder, value string) Endpoint {
	return Endpoint(strings.ReplaceAll(string(e), placeholder, url.PathEscape(value)))
}

// Path is the request path with the .json suffix, e.g. "/r/golang/new.json".
func (e Endpoint) Path() string {
	return "/" + strings.Trim(string(e), "/") + ".json"
}

type Sort string

const (
	Relevance Sort = "relevance"
	Hot       Sort = "hot"
	Top       Sort = "top"
	New       Sort = "new"
	Comments  Sort = "comments"
)

func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case "", Relevance:
		return Relevance, nil
	case Hot:
		return Hot, nil
	case Top:
		return Top, nil
	case New:
		return New, nil
	case Comments:
		return Comments, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

var ErrConflictingCursors = errors.New("before and after cursors are mutually exclusive")

// BuildFilterURL resolves ep against base and appends the listing filter:
// restrict_sr=on, q when query is set, sort, and at most one cursor.
func BuildFilterURL(base string, ep Endpoint, query string, sort Sort, before, after string) (string, error) {
	if before != "" && after != "" {
		return "", ErrConflictingCursors
	}

	u, err := url.Parse(strings.TrimRight(base, "/") + ep.Path())
	if err != nil {
		return "", fmt.Errorf("parse endpoint url: %w", err)
	}

	params := url.Values{}
	params.Set("raw_json", "1")
	params.Set("restrict_sr", "on")
	if query != "" {
		params.Set("q", query)
	}
	if sort != "" {
		params.Set("sort", string(sort))
	}
	if before != "" {
		params.Set("before", before)
	}
	if after != "" {
		params.Set("after", after)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}
