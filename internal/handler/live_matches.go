package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pronoelite/pronoelite-api/internal/livematch"
)

// LiveMatchHandler exposes the manually maintained live match list.
type LiveMatchHandler struct {
	Store *livematch.Store
}

func NewLiveMatchHandler(store *livematch.Store) *LiveMatchHandler {
	if store == nil {
		panic("nil store passed to NewLiveMatchHandler")
	}
	return &LiveMatchHandler{Store: store}
}

// Scores and minute arrive as numbers or numeric strings.
type liveMatchBody struct {
	HomeTeam  string       `json:"homeTeam"`
	AwayTeam  string       `json:"awayTeam"`
	ScoreHome *json.Number `json:"scoreHome"`
	ScoreAway *json.Number `json:"scoreAway"`
	Minute    *json.Number `json:"minute"`
	Status    *string      `json:"status"`
	League    string       `json:"league"`
}

func optInt(n *json.Number, field string) (*int, error) {
	if n == nil || strings.TrimSpace(n.String()) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.String()))
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", field)
	}
	return &v, nil
}

func (b liveMatchBody) patch() (livematch.Patch, error) {
	var p livematch.Patch
	var err error
	if p.ScoreHome, err = optInt(b.ScoreHome, "scoreHome"); err != nil {
		return p, err
	}
	if p.ScoreAway, err = optInt(b.ScoreAway, "scoreAway"); err != nil {
		return p, err
	}
	if p.Minute, err = optInt(b.Minute, "minute"); err != nil {
		return p, err
	}
	p.Status = b.Status
	return p, nil
}

// Add handles POST /api/live-matches/add.
func (h *LiveMatchHandler) Add(c echo.Context) error {
	var body liveMatchBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := body.patch()
	if err != nil {
		return badRequest(c, err.Error())
	}
	in := livematch.NewMatch{
		HomeTeam: body.HomeTeam,
		AwayTeam: body.AwayTeam,
		Minute:   p.Minute,
		League:   body.League,
	}
	if p.ScoreHome != nil {
		in.ScoreHome = *p.ScoreHome
	}
	if p.ScoreAway != nil {
		in.ScoreAway = *p.ScoreAway
	}
	if body.Status != nil {
		in.Status = *body.Status
	}
	m, err := h.Store.Add(in)
	if errors.Is(err, livematch.ErrTeamsRequired) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// List handles GET /api/live-matches.
func (h *LiveMatchHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.List())
}

// Update handles PUT /api/live-matches/:id.
func (h *LiveMatchHandler) Update(c echo.Context) error {
	var body liveMatchBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := body.patch()
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := h.Store.Update(c.Param("id"), p)
	if errors.Is(err, livematch.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/live-matches/:id and returns the removed match.
func (h *LiveMatchHandler) Delete(c echo.Context) error {
	m, err := h.Store.Delete(c.Param("id"))
	if errors.Is(err, livematch.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Clear handles DELETE /api/live-matches.
func (h *LiveMatchHandler) Clear(c echo.Context) error {
	n := h.Store.Clear()
	return c.JSON(http.StatusOK, echo.Map{"message": "all live matches removed", "removed": n})
}
