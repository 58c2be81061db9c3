package settlement

import (
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/metrics"
	"github.com/pronoelite/pronoelite-api/internal/model"
)

// Suggestion is what the advisory endpoint returns to an administrator.
// Final is true once the fixture is over, meaning the verdict will not
// change anymore.
type Suggestion struct {
	TipID   string          `json:"tipId"`
	Pick    string          `json:"prono"`
	Verdict Verdict         `json:"verdict"`
	Final   bool            `json:"final"`
	Match   model.LiveMatch `json:"match"`
}

// Advisor runs Infer and records every abstention for manual review.
type Advisor struct {
	Log *zap.Logger
}

// NewAdvisor returns an Advisor logging to log, or a no-op logger when nil.
func NewAdvisor(log *zap.Logger) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{Log: log}
}

// Suggest evaluates tip against match. A fixture that has not kicked off is
// always pending.
func (a *Advisor) Suggest(tip model.Tip, match model.LiveMatch) Suggestion {
	s := Suggestion{TipID: tip.ID, Pick: tip.Pick, Match: match, Final: model.IsFinished(match.Status)}
	if model.IsInPlay(match.Status) || s.Final {
		s.Verdict = Infer(match.Teams, match.Score, tip.Pick)
	} else {
		s.Verdict = Pending
	}
	metrics.HeuristicVerdicts.WithLabelValues(string(s.Verdict)).Inc()
	if s.Verdict == Pending {
		a.Log.Info("settlement heuristic abstained",
			zap.String("tip_id", tip.ID),
			zap.String("pick", tip.Pick),
			zap.String("match_status", match.Status),
		)
	}
	return s
}
