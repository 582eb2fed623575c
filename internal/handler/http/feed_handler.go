// internal/handler/http/feed_handler.go
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"reddit-client/internal/models"
	"reddit-client/internal/scraper"
)

const minFeedInterval = time.Second

type FeedHandler struct {
	svc    scraper.ScraperService
	logger zerolog.Logger
}

func NewFeedHandler(svc scraper.ScraperService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, logger: logger.With().Str("component", "feed_handler").Logger()}
}

// Stream godoc
// @Summary Stream new posts of a subreddit
// @Description Server-Sent Events stream. Each "post" event carries one models.Post as JSON, oldest first. An "error" event precedes the end of the stream when polling gives up.
// @Tags feed
// @Produce text/event-stream
// @Param subreddit query string true "Subreddit name without the r/ prefix"
// @Param interval query string false "Poll interval as a Go duration, at least 1s (default from FEED_POLL_INTERVAL)"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.HTTPError
// @Router /feed [get]
func (h *FeedHandler) Stream(c echo.Context) error {
	sr := c.QueryParam("subreddit")
	if sr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `subreddit` parameter")
	}

	var interval time.Duration
	if s := c.QueryParam("interval"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < minFeedInterval {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("`interval` must be a duration of at least %s", minFeedInterval))
		}
		interval = d
	}

	streamID := uuid.NewString()
	logger := h.logger.With().Str("stream", streamID).Str("subreddit", sr).Logger()

	watch := h.svc.WatchSubreddit(c.Request().Context(), sr, interval)

	res := c.Response()
	// the server write timeout would cut the stream
	_ = http.NewResponseController(res.Writer).SetWriteDeadline(time.Time{})

	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Stream-Id", streamID)
	res.WriteHeader(http.StatusOK)
	res.Flush()

	logger.Info().Msg("feed subscriber connected")

	sent := 0
	for post := range watch.Posts {
		if err := writeEvent(res, post.Name, "post", post); err != nil {
			logger.Warn().Err(err).Msg("feed write failed")
			break
		}
		res.Flush()
		sent++
	}

	if err := watch.Err(); err != nil {
		logger.Error().Err(err).Msg("feed stopped")
		_ = writeEvent(res, "", "error", models.HTTPError{Code: http.StatusBadGateway, Message: err.Error()})
		res.Flush()
	}

	logger.Info().Int("sent", sent).Str("last_seen", watch.LastSeen()).Msg("feed subscriber gone")
	return nil
}

func writeEvent(w io.Writer, id, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
