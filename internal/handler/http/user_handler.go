// internal/handler/http/user_handler.go
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"reddit-client/internal/scraper"
)

type UserHandler struct {
	svc scraper.ScraperService
}

func NewUserHandler(svc scraper.ScraperService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetUserInfo godoc
// @Summary Get information about a Reddit user
// @Description Retrieves profile information, posts, and comments for a specific Reddit user
// @Tags user
// @Accept json
// @Produce json
// @Param username query string true "Reddit username"
// @Param since_timestamp query int false "Unix timestamp to filter posts and comments (newer than this timestamp)"
// @Param post_limit query int false "Maximum number of posts to retrieve. Use -1 for all available posts"
// @Param comment_limit query int false "Maximum number of comments to retrieve. Use -1 for all available comments"
// @Success 200 {object} models.UserActivity "Returns user information, posts, and comments"
// @Failure 400 {object} models.HTTPError "Invalid request parameters"
// @Failure 502 {object} models.HTTPError "Error occurred while scraping data"
// @Router /user [get]
func (h *UserHandler) GetUserInfo(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `username` parameter")
	}

	since, err := querySince(c)
	if err != nil {
		return err
	}
	postLimit, err := queryInt(c, "post_limit", 0)
	if err != nil {
		return err
	}
	// comment_limit follows post_limit unless given
	commentLimit, err := queryInt(c, "comment_limit", postLimit)
	if err != nil {
		return err
	}
	if err := checkLimit(postLimit, commentLimit); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeoutFor(since, postLimit, commentLimit))
	defer cancel()

	activity, err := h.svc.ScrapeUserActivity(ctx, username, since, postLimit, commentLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("scrape user data error: %v", err))
	}

	return c.JSON(http.StatusOK, activity)
}
