// internal/handler/http/subreddit_handler.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"reddit-client/internal/models"
	"reddit-client/internal/scraper"
)

type SubredditHandler struct {
	svc scraper.ScraperService
}

func NewSubredditHandler(svc scraper.ScraperService) *SubredditHandler {
	return &SubredditHandler{svc: svc}
}

// GetSubredditPosts godoc
// @Summary Get posts from a subreddit
// @Description Retrieves the newest posts of a subreddit, optionally only those newer than a timestamp
// @Tags subreddit
// @Accept json
// @Produce json
// @Param subreddit query string true "Subreddit name without the r/ prefix"
// @Param since_timestamp query int false "Unix timestamp to filter posts"
// @Param limit query int false "Maximum number of posts to retrieve. Use -1 for all pages"
// @Success 200 {object} models.SubredditResponse
// @Failure 400 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Router /subreddit [get]
func (h *SubredditHandler) GetSubredditPosts(c echo.Context) error {
	sr := c.QueryParam("subreddit")
	if sr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `subreddit` parameter")
	}

	since, err := querySince(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeoutFor(since, limit))
	defer cancel()

	start := time.Now()
	posts, err := h.svc.ScrapeSubreddit(ctx, sr, since, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("scrape error: %v", err))
	}

	return c.JSON(http.StatusOK, models.SubredditResponse{
		Posts: posts,
		Meta: models.SubredditMeta{
			RequestedLimit:   limit,
			ActualCount:      len(posts),
			Subreddit:        sr,
			SinceTimestamp:   since,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
	})
}

// SearchSubreddits godoc
// @Summary Search for subreddits
// @Description Finds subreddits whose name or description matches the query
// @Tags subreddit
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Maximum number of subreddits"
// @Success 200 {object} models.SubredditSearchResponse
// @Failure 400 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Router /subreddits [get]
func (h *SubredditHandler) SearchSubreddits(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `q` parameter")
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	subs, err := h.svc.SearchSubreddits(ctx, q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("subreddit search error: %v", err))
	}
	return c.JSON(http.StatusOK, models.SubredditSearchResponse{Query: q, Subreddits: subs})
}
