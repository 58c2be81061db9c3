package handler // handler holds the HTTP handlers of the API

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

const (
	requestTimeout = 5 * time.Second
	defaultLimit   = 20
	maxLimit       = 100
)

// reqCtx bounds store calls made on behalf of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// serverError answers 500 with the underlying cause appended, and logs it.
func serverError(c echo.Context, log *zap.Logger, err error) error {
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error: " + err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// HTTPErrorHandler renders every error that reaches Echo as {"error": msg}.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, echo.Map{"error": msg})
	}
}

// parseTipFilter reads the history filters: league, type, resultat,
// startDate and endDate. A date-only endDate covers the whole day.
func parseTipFilter(c echo.Context) (repository.TipFilter, error) {
	var f repository.TipFilter
	f.League = strings.TrimSpace(c.QueryParam("league"))

	if v := strings.TrimSpace(c.QueryParam("type")); v != "" {
		f.Visibility = model.Visibility(strings.ToLower(v))
		if !f.Visibility.Valid() {
			return f, errors.New(`type must be "public" or "vip"`)
		}
	}
	if v := strings.TrimSpace(c.QueryParam("resultat")); v != "" {
		o, ok := model.ParseOutcome(v)
		if !ok {
			return f, errors.New(`resultat must be "won", "lost" or "pending"`)
		}
		f.Outcome = o
	}
	if v := strings.TrimSpace(c.QueryParam("startDate")); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return f, errors.New("invalid startDate")
		}
		f.From = &t
	}
	if v := strings.TrimSpace(c.QueryParam("endDate")); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return f, errors.New("invalid endDate")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Microsecond)
		}
		f.To = &t
	}
	return f, nil
}

// parseDate accepts RFC3339 timestamps and YYYY-MM-DD dates, both in UTC.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

// parsePage reads page (from 1) and limit (default 20, capped at 100).
func parsePage(c echo.Context) (page, limit int) {
	page, limit = 1, defaultLimit
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = min(n, maxLimit)
	}
	return page, limit
}
