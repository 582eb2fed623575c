// internal/handler/http/search_handler.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"reddit-client/internal/client"
	"reddit-client/internal/models"
	"reddit-client/internal/scraper"
)

type SearchHandler struct {
	svc scraper.ScraperService
}

func NewSearchHandler(svc scraper.ScraperService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search godoc
// @Summary Search Reddit for posts
// @Description Search the whole site or a single subreddit, optionally narrowed to an author
// @Tags search
// @Accept json
// @Produce json
// @Param search_string query string false "Search query string"
// @Param subreddit query string false "Restrict the search to this subreddit"
// @Param author query string false "Only posts by this author"
// @Param compound_query query string false "Free text with subreddit:x and author:y terms"
// @Param since_timestamp query int false "Unix timestamp to filter posts"
// @Param limit query int false "Maximum number of results. Use -1 for all pages"
// @Param sort query string false "Sort order (relevance, hot, top, new, comments)"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Router /search [get]
func (h *SearchHandler) Search(c echo.Context) error {
	params, err := buildSearchParams(c)
	if err != nil {
		return err
	}
	if params.Query == "" && params.Author == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `search_string` parameter")
	}

	limit, err := queryInt(c, "limit", 25)
	if err != nil {
		return err
	}
	since, err := querySince(c)
	if err != nil {
		return err
	}
	if err := checkLimit(limit); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeoutFor(since, limit))
	defer cancel()

	start := time.Now()
	posts, err := h.svc.Search(ctx, params, since, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("search error: %v", err))
	}

	query := params.Query
	if params.Author != "" {
		query = strings.TrimSpace(query + " author:" + params.Author)
	}

	return c.JSON(http.StatusOK, models.SearchResponse{
		Posts: posts,
		Meta: models.SearchMeta{
			Query:            query,
			Subreddit:        params.Subreddit,
			Sort:             string(params.Sort),
			Count:            len(posts),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			RequestedLimit:   describeLimit(limit, since),
		},
	})
}

func buildSearchParams(c echo.Context) (scraper.SearchParams, error) {
	sort, err := client.ParseSort(c.QueryParam("sort"))
	if err != nil {
		return scraper.SearchParams{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := scraper.SearchParams{
		Query:     strings.TrimSpace(c.QueryParam("search_string")),
		Subreddit: strings.TrimPrefix(c.QueryParam("subreddit"), "r/"),
		Author:    strings.TrimPrefix(c.QueryParam("author"), "u/"),
		Sort:      sort,
	}

	// compound_query fills in whatever the dedicated parameters left empty
	if compound := c.QueryParam("compound_query"); compound != "" {
		var words []string
		for _, part := range strings.Fields(compound) {
			key, value, ok := strings.Cut(part, ":")
			switch {
			case ok && key == "subreddit" && params.Subreddit == "":
				params.Subreddit = value
			case ok && key == "author" && params.Author == "":
				params.Author = value
			default:
				words = append(words, part)
			}
		}
		params.Query = strings.TrimSpace(strings.Join(append([]string{params.Query}, words...), " "))
	}

	return params, nil
}
