package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	defaultTimeout   = 60 * time.Second
	unlimitedTimeout = 240 * time.Second
)

func queryInt(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid `%s`", name))
	}
	return v, nil
}

func querySince(c echo.Context) (int64, error) {
	s := c.QueryParam("since_timestamp")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid `since_timestamp`")
	}
	return v, nil
}

func checkLimit(limits ...int) error {
	for _, l := range limits {
		if l < -1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be -1 or a positive integer")
		}
	}
	return nil
}

// timeoutFor gives unlimited walks bounded by a timestamp more time.
func timeoutFor(since int64, limits ...int) time.Duration {
	for _, l := range limits {
		if l == -1 && since > 0 {
			return unlimitedTimeout
		}
	}
	return defaultTimeout
}

func describeLimit(limit int, since int64) string {
	switch {
	case limit == -1 && since > 0:
		return "all items since timestamp"
	case limit == -1:
		return "all pages"
	case limit == 0 && since > 0:
		return "all items since timestamp"
	case limit == 0:
		return "default"
	}
	return strconv.Itoa(limit)
}
