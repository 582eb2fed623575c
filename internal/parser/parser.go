// internal/parser/parser.go
package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reddit-client/internal/client"
	"reddit-client/internal/models"
)

const permalinkBase = "https://www.reddit.com"

// ParseListing decodes a listing envelope whose children carry T.
func ParseListing[T any](data json.RawMessage) (models.Listing[T], error) {
	return client.DecodeJSON[models.Listing[T]](data)
}

type RedditParser struct{}

func NewRedditParser() *RedditParser {
	return &RedditParser{}
}

// ParseSubmission splits a comments/<id> response into the post and the raw
// top level comment things.
func ParseSubmission(data json.RawMessage) (models.PostData, []models.Thing[models.CommentData], error) {
	raw, err := client.DecodeJSON[[]json.RawMessage](data)
	if err != nil {
		return models.PostData{}, nil, err
	}
	if len(raw) < 2 {
		return models.PostData{}, nil, &client.DeserializationError{
			Type: "submission",
			Err:  fmt.Errorf("expected post and comment listings, got %d elements", len(raw)),
		}
	}

	posts, err := ParseListing[models.PostData](raw[0])
	if err != nil {
		return models.PostData{}, nil, err
	}
	if len(posts.Data.Children) == 0 {
		return models.PostData{}, nil, fmt.Errorf("post not found")
	}

	comments, err := ParseListing[models.CommentData](raw[1])
	if err != nil {
		return models.PostData{}, nil, err
	}

	return posts.Data.Children[0].Data, comments.Data.Children, nil
}

func (p *RedditParser) ParsePost(ctx context.Context, data json.RawMessage) (models.PostDetail, error) {
	post, children, err := ParseSubmission(data)
	if err != nil {
		return models.PostDetail{}, fmt.Errorf("parse post JSON: %w", err)
	}

	return models.PostDetail{
		Post:     ToPost(post),
		Comments: p.processComments(ctx, children),
	}, nil
}

// ParseMoreComments decodes a morechildren response and nests it. The API
// returns a flat list; children whose parent is in the same response are
// nested under it.
func (p *RedditParser) ParseMoreComments(ctx context.Context, data json.RawMessage) ([]models.Comment, error) {
	things, err := p.DecodeMoreComments(data)
	if err != nil {
		return nil, err
	}
	return p.NestComments(ctx, things), nil
}

// DecodeMoreComments returns the flat things of a morechildren response.
// Callers that split one placeholder over several requests merge the results
// before nesting them.
func (p *RedditParser) DecodeMoreComments(data json.RawMessage) ([]models.Thing[models.CommentData], error) {
	var wrapper struct {
		JSON struct {
			Data struct {
				Things []models.Thing[models.CommentData] `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}

	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, &client.DeserializationError{Type: "morechildren", Err: err}
	}
	return wrapper.JSON.Data.Things, nil
}

// NestComments builds a tree from a flat list, attaching every comment to
// its parent when the parent is in the list too.
func (p *RedditParser) NestComments(ctx context.Context, things []models.Thing[models.CommentData]) []models.Comment {
	byParent := make(map[string][]models.Thing[models.CommentData])
	present := make(map[string]bool)
	for _, thing := range things {
		if thing.Kind == models.KindComment {
			present[models.KindComment+"_"+thing.Data.ID] = true
		}
	}

	var roots []models.Thing[models.CommentData]
	for _, thing := range things {
		if present[thing.Data.ParentID] {
			byParent[thing.Data.ParentID] = append(byParent[thing.Data.ParentID], thing)
			continue
		}
		roots = append(roots, thing)
	}

	var attach func(things []models.Thing[models.CommentData]) []models.Comment
	attach = func(things []models.Thing[models.CommentData]) []models.Comment {
		comments := p.processComments(ctx, things)
		for i := range comments {
			if kids := byParent[models.KindComment+"_"+comments[i].ID]; len(kids) > 0 {
				comments[i].Replies = append(comments[i].Replies, attach(kids)...)
			}
		}
		return comments
	}

	return attach(roots)
}

func (p *RedditParser) processComments(ctx context.Context, children []models.Thing[models.CommentData]) []models.Comment {
	var comments []models.Comment

	for _, child := range children {
		if ctx.Err() != nil {
			return comments
		}

		switch child.Kind {
		case models.KindComment:
			comment := ToComment(child.Data)

			if replies := decodeReplies(child.Data.Replies); len(replies) > 0 {
				comment.Replies = p.processComments(ctx, replies)

				for _, reply := range replies {
					if reply.Kind == models.KindMore && len(reply.Data.Children) > 0 {
						comment.HasMore = true
						comment.MoreIDs = append(comment.MoreIDs, reply.Data.Children...)
					}
				}
			}

			comments = append(comments, comment)

		case models.KindMore:
			comments = append(comments, moreStub(child.Data))
		}
	}

	return comments
}

// moreStub turns a "more" thing into a placeholder. A stub without children
// (or with the literal "continue") is a "continue this thread" link and
// carries its parent ID instead.
func moreStub(data models.CommentData) models.Comment {
	isContinue := len(data.Children) == 0
	for _, id := range data.Children {
		if id == "continue" {
			isContinue = true
			break
		}
	}

	if isContinue {
		return models.Comment{
			ID:      "continue_" + uuid.NewString(),
			IsMore:  true,
			HasMore: true,
			MoreIDs: []string{data.ParentID},
		}
	}

	return models.Comment{
		ID:        "more_" + uuid.NewString(),
		IsMore:    true,
		MoreIDs:   data.Children,
		MoreCount: data.Count,
	}
}

// decodeReplies accepts both the empty string and a nested listing.
func decodeReplies(raw json.RawMessage) []models.Thing[models.CommentData] {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}

	listing, err := ParseListing[models.CommentData](raw)
	if err != nil {
		return nil
	}
	return listing.Data.Children
}

// CommentReplies returns the raw replies of a comment, for callers that walk
// the tree themselves.
func CommentReplies(c models.CommentData) []models.Thing[models.CommentData] {
	return decodeReplies(c.Replies)
}

func ToPost(d models.PostData) models.Post {
	post := models.Post{
		ID:          d.ID,
		Name:        d.Name,
		Title:       d.Title,
		Body:        d.Selftext,
		Author:      d.Author,
		Subreddit:   d.Subreddit,
		Score:       d.Score,
		NumComments: d.NumComments,
		CreatedAt:   d.CreatedUTC.Time(),
		Flair:       d.LinkFlairText,
		URL:         Permalink(d.Permalink),
	}
	if !d.IsSelf {
		post.LinkURL = d.URL
	}
	return post
}

func ToComment(d models.CommentData) models.Comment {
	return models.Comment{
		ID:        d.ID,
		Author:    d.Author,
		Body:      d.Body,
		Score:     d.Score,
		CreatedAt: d.CreatedUTC.Time(),
	}
}

func ToUserPost(d models.PostData) models.UserPost {
	return models.UserPost{
		ID:        d.ID,
		Title:     d.Title,
		Body:      d.Selftext,
		Score:     d.Score,
		CreatedAt: d.CreatedUTC.Time(),
		Subreddit: d.Subreddit,
		Flair:     d.LinkFlairText,
		URL:       Permalink(d.Permalink),
	}
}

func ToUserComment(d models.CommentData) models.UserComment {
	return models.UserComment{
		ID:        d.ID,
		Body:      d.Body,
		Score:     d.Score,
		CreatedAt: d.CreatedUTC.Time(),
		Subreddit: d.Subreddit,
		PostID:    strings.TrimPrefix(d.LinkID, models.KindLink+"_"),
		PostTitle: d.LinkTitle,
	}
}

func ToUserInfo(d models.UserData) models.UserInfo {
	return models.UserInfo{
		Username:     d.Name,
		LinkKarma:    d.LinkKarma,
		CommentKarma: d.CommentKarma,
		CreatedAt:    d.CreatedUTC.Time(),
		IsModerator:  d.IsMod,
		IsVerified:   d.Verified,
	}
}

func ToSubredditSummary(d models.SubredditData) models.SubredditSummary {
	return models.SubredditSummary{
		Name:        d.DisplayName,
		Title:       d.Title,
		Subscribers: d.Subscribers,
		URL:         d.URL,
		CreatedAt:   d.CreatedUTC.Time(),
	}
}

// Permalink makes a site relative permalink absolute.
func Permalink(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return permalinkBase + path
}
