package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/metrics"
	"github.com/pronoelite/pronoelite-api/internal/middleware"
	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/queue"
	"github.com/pronoelite/pronoelite-api/internal/repository"
	"github.com/pronoelite/pronoelite-api/internal/service"
)

// TipHandler serves the tip catalog and its admin operations.
type TipHandler struct {
	Tips   *repository.TipRepo
	Events *service.Events
	Log    *zap.Logger
}

// NewTipHandler panics when the repository is missing.
func NewTipHandler(tips *repository.TipRepo, events *service.Events, log *zap.Logger) *TipHandler {
	if tips == nil {
		panic("nil repository passed to NewTipHandler")
	}
	if events == nil {
		events = service.NewEvents(nil, log)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TipHandler{Tips: tips, Events: events, Log: log}
}

// tipInput is the request body of create and update. Every field is
// optional at decode time; create enforces the required ones.
type tipInput struct {
	League   *string      `json:"league"`
	Match    *string      `json:"match"`
	Pick     *string      `json:"prono"`
	Odds     *json.Number `json:"cote"`
	Date     *string      `json:"date"`
	Type     *string      `json:"type"`
	Tag      *string      `json:"tag"`
	Analysis *string      `json:"analyse"`
	Outcome  *string      `json:"resultat"`
}

// apply validates in and copies the provided fields onto t.
func (in tipInput) apply(t *model.Tip) error {
	if in.League != nil {
		if t.League = strings.TrimSpace(*in.League); t.League == "" {
			return errors.New("league must not be empty")
		}
	}
	if in.Match != nil {
		if t.Match = strings.TrimSpace(*in.Match); t.Match == "" {
			return errors.New("match must not be empty")
		}
	}
	if in.Pick != nil {
		if t.Pick = strings.TrimSpace(*in.Pick); t.Pick == "" {
			return errors.New("prono must not be empty")
		}
	}
	if in.Odds != nil {
		odds, err := strconv.ParseFloat(strings.TrimSpace(in.Odds.String()), 64)
		if err != nil || odds <= 0 {
			return errors.New("cote must be a positive number")
		}
		t.Odds = &odds
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		d, _, err := parseDate(strings.TrimSpace(*in.Date))
		if err != nil {
			return errors.New("invalid date")
		}
		t.Date = d
	}
	if in.Type != nil {
		v := model.Visibility(strings.ToLower(strings.TrimSpace(*in.Type)))
		if !v.Valid() {
			return errors.New(`type must be "public" or "vip"`)
		}
		t.Visibility = v
	}
	if in.Tag != nil {
		t.Tag = strings.TrimSpace(*in.Tag)
	}
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"league", t.League, model.MaxLeagueLen},
		{"match", t.Match, model.MaxMatchLen},
		{"prono", t.Pick, model.MaxPickLen},
		{"tag", t.Tag, model.MaxTagLen},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return fmt.Errorf("%s must be at most %d characters", f.name, f.max)
		}
	}
	if in.Analysis != nil {
		t.Analysis = strings.TrimSpace(*in.Analysis)
	}
	if in.Outcome != nil && strings.TrimSpace(*in.Outcome) != "" {
		o, ok := model.ParseOutcome(*in.Outcome)
		if !ok {
			return errors.New(`resultat must be "won", "lost" or "pending"`)
		}
		t.Outcome = o
	}
	return nil
}

func (h *TipHandler) list(c echo.Context, vis model.Visibility) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	tips, err := h.Tips.ListAll(ctx, repository.TipFilter{Visibility: vis})
	if err != nil {
		return serverError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, tips)
}

// Public handles GET /api/pronos/public.
func (h *TipHandler) Public(c echo.Context) error { return h.list(c, model.VisibilityPublic) }

// VIP handles GET /api/pronos/vip.
func (h *TipHandler) VIP(c echo.Context) error { return h.list(c, model.VisibilityVIP) }

// All handles GET /api/pronos/all.
func (h *TipHandler) All(c echo.Context) error { return h.list(c, "") }

// Create handles POST /api/pronos/add.
func (h *TipHandler) Create(c echo.Context) error {
	var in tipInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	if blank(in.League) || blank(in.Match) || blank(in.Pick) || in.Odds == nil {
		return badRequest(c, "league, match, prono and cote are required")
	}
	tip := model.Tip{Date: time.Now().UTC(), Visibility: model.VisibilityPublic, Outcome: model.OutcomePending}
	if err := in.apply(&tip); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tips.Create(ctx, &tip); err != nil {
		return serverError(c, h.Log, err)
	}
	metrics.TipsCreated.Inc()

	id, _ := middleware.CurrentIdentity(c)
	h.Log.Info("tip created", zap.String("tip_id", tip.ID), zap.String("by", id.UserID))
	h.Events.Emit(ctx, queue.TipCreated, queue.TipCreatedEvent{
		TipID:      tip.ID,
		League:     tip.League,
		Match:      tip.Match,
		Visibility: string(tip.Visibility),
		CreatedBy:  id.UserID,
	})
	return c.JSON(http.StatusCreated, tip)
}

// Update handles PUT /api/pronos/:id. Only the provided fields change.
func (h *TipHandler) Update(c echo.Context) error {
	var in tipInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	tip, err := h.Tips.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrTipNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tip not found"})
	}
	if err != nil {
		return serverError(c, h.Log, err)
	}
	previous := tip.Outcome
	if err := in.apply(tip); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Tips.Update(ctx, tip); err != nil {
		if errors.Is(err, repository.ErrTipNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tip not found"})
		}
		return serverError(c, h.Log, err)
	}
	if tip.Outcome != previous {
		h.settled(c, tip, previous)
	}
	return c.JSON(http.StatusOK, tip)
}

// Delete handles DELETE /api/pronos/:id.
func (h *TipHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	if err := h.Tips.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTipNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tip not found"})
		}
		return serverError(c, h.Log, err)
	}
	who, _ := middleware.CurrentIdentity(c)
	h.Events.Emit(ctx, queue.TipDeleted, queue.TipDeletedEvent{TipID: id, DeletedBy: who.UserID})
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// settled records a manual outcome change.
func (h *TipHandler) settled(c echo.Context, tip *model.Tip, previous model.Outcome) {
	who, _ := middleware.CurrentIdentity(c)
	metrics.Settlements.WithLabelValues(string(tip.Outcome)).Inc()
	h.Log.Info("tip settled",
		zap.String("tip_id", tip.ID),
		zap.String("previous", string(previous)),
		zap.String("outcome", string(tip.Outcome)),
		zap.String("by", who.UserID))
	h.Events.Emit(c.Request().Context(), queue.TipSettled, queue.TipSettledEvent{
		TipID:     tip.ID,
		Match:     tip.Match,
		Pick:      tip.Pick,
		Previous:  string(previous),
		Outcome:   string(tip.Outcome),
		SettledBy: who.UserID,
	})
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }
