package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/repository"
	"github.com/pronoelite/pronoelite-api/internal/stats"
)

// HistoryHandler serves the paginated archive and its statistics.
type HistoryHandler struct {
	Tips *repository.TipRepo
	Log  *zap.Logger
}

func NewHistoryHandler(tips *repository.TipRepo, log *zap.Logger) *HistoryHandler {
	if tips == nil {
		panic("nil repository passed to NewHistoryHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryHandler{Tips: tips, Log: log}
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type historyResponse struct {
	Tips       []model.Tip   `json:"pronos"`
	Pagination pagination    `json:"pagination"`
	Stats      stats.Summary `json:"stats"`
}

// List handles GET /api/history: one page of tips by fixture date, most
// recent first, plus the summary of the whole filtered set.
func (h *HistoryHandler) List(c echo.Context) error {
	f, err := parseTipFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	page, limit := parsePage(c)

	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Tips.List(ctx, f, repository.KickoffDesc, repository.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return serverError(c, h.Log, err)
	}
	total, err := h.Tips.Count(ctx, f)
	if err != nil {
		return serverError(c, h.Log, err)
	}
	all, err := h.Tips.ListAll(ctx, f)
	if err != nil {
		return serverError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, historyResponse{
		Tips: items,
		Pagination: pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
		Stats: stats.Aggregate(all),
	})
}

// rollup loads every tip matching the request's filters and renders fn
// of them.
func (h *HistoryHandler) rollup(c echo.Context, fn func([]model.Tip) any) error {
	f, err := parseTipFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	tips, err := h.Tips.ListAll(ctx, f)
	if err != nil {
		return serverError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, fn(tips))
}

// Stats handles GET /api/history/stats.
func (h *HistoryHandler) Stats(c echo.Context) error {
	return h.rollup(c, func(t []model.Tip) any { return stats.Aggregate(t) })
}

// Leagues handles GET /api/history/stats/leagues.
func (h *HistoryHandler) Leagues(c echo.Context) error {
	return h.rollup(c, func(t []model.Tip) any { return stats.ByLeague(t) })
}

// Monthly handles GET /api/history/stats/monthly.
func (h *HistoryHandler) Monthly(c echo.Context) error {
	return h.rollup(c, func(t []model.Tip) any { return stats.ByMonth(t) })
}
