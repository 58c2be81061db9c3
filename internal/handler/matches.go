package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/livematch"
	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/repository"
	"github.com/pronoelite/pronoelite-api/internal/settlement"
	"github.com/pronoelite/pronoelite-api/internal/stats"
)

// MatchHandler serves fixtures: tips by kick-off, manual settlement, the
// sports feed proxy and the advisory verdict.
type MatchHandler struct {
	Tips    *TipHandler
	Feed    *livematch.Feed
	Store   *livematch.Store // manually entered live matches
	Advisor *settlement.Advisor
}

func NewMatchHandler(tips *TipHandler, feed *livematch.Feed, live *livematch.Store, advisor *settlement.Advisor) *MatchHandler {
	if tips == nil || live == nil {
		panic("nil dependency passed to NewMatchHandler")
	}
	if advisor == nil {
		advisor = settlement.NewAdvisor(tips.Log)
	}
	return &MatchHandler{Tips: tips, Feed: feed, Store: live, Advisor: advisor}
}

func (h *MatchHandler) log() *zap.Logger { return h.Tips.Log }

// List handles GET /api/matches: every tip by kick-off, earliest first.
func (h *MatchHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	tips, err := h.Tips.Tips.List(ctx, repository.TipFilter{}, repository.KickoffAsc, repository.Page{})
	if err != nil {
		return serverError(c, h.log(), err)
	}
	return c.JSON(http.StatusOK, tips)
}

// SetResult handles PUT /api/matches/:id/result with body {"resultat": ...}.
func (h *MatchHandler) SetResult(c echo.Context) error {
	var body struct {
		Outcome string `json:"resultat"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	outcome, err := settlement.ParseOutcome(body.Outcome)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	tip, err := h.Tips.Tips.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrTipNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tip not found"})
	}
	if err != nil {
		return serverError(c, h.log(), err)
	}
	if err := h.Tips.Tips.SetOutcome(ctx, tip.ID, outcome); err != nil {
		if errors.Is(err, repository.ErrTipNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tip not found"})
		}
		return serverError(c, h.log(), err)
	}
	previous := tip.Outcome
	tip.Outcome = outcome
	if previous != outcome {
		h.Tips.settled(c, tip, previous)
	}
	return c.JSON(http.StatusOK, tip)
}

// Stats handles GET /api/matches/stats.
func (h *MatchHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	tips, err := h.Tips.Tips.ListAll(ctx, repository.TipFilter{})
	if err != nil {
		return serverError(c, h.log(), err)
	}
	return c.JSON(http.StatusOK, stats.OutcomeCounts(tips))
}

// Live handles GET /api/matches/live by proxying today's fixtures.
func (h *MatchHandler) Live(c echo.Context) error {
	if !h.Feed.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sports api key not configured"})
	}
	matches, err := h.Feed.Today(c.Request().Context())
	if err != nil {
		h.log().Warn("sports feed failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sports feed unavailable"})
	}
	return c.JSON(http.StatusOK, matches)
}

// suggestRequest names the match to evaluate the tip against: a tracked
// live match, a feed fixture, or a score given inline.
type suggestRequest struct {
	LiveMatchID string  `json:"liveMatchId"`
	FixtureID   string  `json:"fixtureId"`
	HomeTeam    string  `json:"homeTeam"`
	AwayTeam    string  `json:"awayTeam"`
	ScoreHome   *int    `json:"scoreHome"`
	ScoreAway   *int    `json:"scoreAway"`
	Status      *string `json:"status"`
}

// Suggest handles POST /api/matches/:id/suggest. The verdict is returned to
// the caller only; the tip is left untouched.
func (h *MatchHandler) Suggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	tip, err := h.Tips.Tips.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrTipNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tip not found"})
	}
	if err != nil {
		return serverError(c, h.log(), err)
	}

	var match model.LiveMatch
	switch {
	case req.LiveMatchID != "":
		match, err = h.Store.Get(req.LiveMatchID)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
	case req.FixtureID != "":
		if !h.Feed.Configured() {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sports api key not configured"})
		}
		match, err = h.Feed.Fixture(c.Request().Context(), req.FixtureID)
		switch {
		case errors.Is(err, livematch.ErrFixtureNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case err != nil:
			h.log().Warn("sports feed failed", zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "sports feed unavailable"})
		}
	case req.ScoreHome != nil && req.ScoreAway != nil:
		match = inlineMatch(*tip, req)
	default:
		return badRequest(c, "liveMatchId, fixtureId or scoreHome and scoreAway are required")
	}

	return c.JSON(http.StatusOK, h.Advisor.Suggest(*tip, match))
}

// inlineMatch builds a finished match from an inline score. Team names not
// given in the request are taken from the tip's "Home - Away" label.
func inlineMatch(tip model.Tip, req suggestRequest) model.LiveMatch {
	home, away := splitFixture(tip.Match)
	if s := strings.TrimSpace(req.HomeTeam); s != "" {
		home = s
	}
	if s := strings.TrimSpace(req.AwayTeam); s != "" {
		away = s
	}
	status := model.StatusFinished
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status = strings.ToUpper(strings.TrimSpace(*req.Status))
	}
	return model.LiveMatch{
		Teams:  model.Teams{Home: home, Away: away},
		Score:  model.Score{Home: *req.ScoreHome, Away: *req.ScoreAway},
		Status: status,
		League: tip.League,
		Date:   tip.Date,
	}
}

func splitFixture(label string) (home, away string) {
	for _, sep := range []string{" - ", " vs ", " VS ", " v "} {
		if h, a, ok := strings.Cut(label, sep); ok {
			return strings.TrimSpace(h), strings.TrimSpace(a)
		}
	}
	return strings.TrimSpace(label), ""
}
