// internal/parser/interface.go
package parser

import (
	"context"
	"encoding/json"

	"reddit-client/internal/models"
)

type ParserInterface interface {
	ParsePost(ctx context.Context, data json.RawMessage) (models.PostDetail, error)
	ParseMoreComments(ctx context.Context, data json.RawMessage) ([]models.Comment, error)
	DecodeMoreComments(data json.RawMessage) ([]models.Thing[models.CommentData], error)
	NestComments(ctx context.Context, things []models.Thing[models.CommentData]) []models.Comment
}

var _ ParserInterface = (*RedditParser)(nil)
