// internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"reddit-client/internal/handler/http"
	"reddit-client/internal/scraper"
)

func NewRouter(e *echo.Echo, svc scraper.ScraperService, logger zerolog.Logger) {
	sub := http.NewSubredditHandler(svc)
	usr := http.NewUserHandler(svc)
	pst := http.NewPostHandler(svc)
	sch := http.NewSearchHandler(svc)
	fd := http.NewFeedHandler(svc, logger)

	e.GET("/subreddit", sub.GetSubredditPosts)
	e.GET("/subreddits", sub.SearchSubreddits)
	e.GET("/user", usr.GetUserInfo)
	e.GET("/post", pst.GetPostInfo)
	e.GET("/search", sch.Search)
	e.GET("/feed", fd.Stream)
}
