package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/pronoelite/pronoelite-api/internal/model"
)

func ctxWithQuery(q string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/history?"+q, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, defaultLimit},
		{"page=3&limit=5", 3, 5},
		{"page=0&limit=-2", 1, defaultLimit},
		{"page=abc&limit=500", 1, maxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, limit := parsePage(ctxWithQuery(tt.query))
			require.Equal(t, tt.page, page)
			require.Equal(t, tt.limit, limit)
		})
	}
}

func TestParseTipFilter(t *testing.T) {
	f, err := parseTipFilter(ctxWithQuery("league=%20Ligue%201%20&type=VIP&resultat=perdant&startDate=2024-03-01T10:00:00%2B02:00&endDate=2024-03-31"))
	require.NoError(t, err)
	require.Equal(t, "Ligue 1", f.League)
	require.Equal(t, model.VisibilityVIP, f.Visibility)
	require.Equal(t, model.OutcomeLost, f.Outcome)
	require.NotNil(t, f.From)
	require.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), *f.From)
	require.NotNil(t, f.To)
	require.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999000, time.UTC), *f.To)

	for _, q := range []string{"type=premium", "resultat=draw", "startDate=yesterday", "endDate=31/03/2024"} {
		_, err := parseTipFilter(ctxWithQuery(q))
		require.Error(t, err, q)
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(nil)
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "already there") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"error":"already there"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestSplitFixture(t *testing.T) {
	home, away := splitFixture("PSG - OM")
	require.Equal(t, "PSG", home)
	require.Equal(t, "OM", away)
	home, away = splitFixture("Real Madrid vs Barcelona")
	require.Equal(t, "Real Madrid", home)
	require.Equal(t, "Barcelona", away)
	home, away = splitFixture("Derby")
	require.Equal(t, "Derby", home)
	require.Empty(t, away)
}
