// Package settlement decides the outcome of tips. The authoritative path is
// an administrator recording the result by hand; Infer only offers an
// advisory reading of a pick against a live score.
package settlement

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/pronoelite/pronoelite-api/internal/model"
)

// ErrInvalidOutcome is returned for a missing or unknown outcome value.
var ErrInvalidOutcome = errors.New("invalid outcome: expected won, lost or pending")

// ParseOutcome validates a manually submitted outcome.
func ParseOutcome(s string) (model.Outcome, error) {
	o, ok := model.ParseOutcome(s)
	if !ok {
		return "", ErrInvalidOutcome
	}
	return o, nil
}

// Verdict is the advisory reading of a pick against a score. It is distinct
// from model.Outcome and is never stored.
type Verdict string

const (
	Winning Verdict = "winning"
	Losing  Verdict = "losing"
	Pending Verdict = "pending"
)

// DefaultThreshold is the goal line used when an over/under pick carries no
// number.
const DefaultThreshold = 2.5

var (
	victoryRe = regexp.MustCompile(`\b(victoire|victory|win|wins)\b`)
	drawRe    = regexp.MustCompile(`\b(nul|draw)\b`)
	overRe    = regexp.MustCompile(`\bplus de\b|\bover\b`)
	underRe   = regexp.MustCompile(`\bmoins de\b|\bunder\b`)
	numberRe  = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// Infer reads pick against the teams and score of a fixture. Rules are
// tried in order: team victory, draw, over, under. Anything it cannot
// interpret yields Pending.
func Infer(teams model.Teams, score model.Score, pick string) Verdict {
	p := strings.ToLower(strings.TrimSpace(pick))
	if p == "" {
		return Pending
	}

	if victoryRe.MatchString(p) {
		home := strings.ToLower(strings.TrimSpace(teams.Home))
		away := strings.ToLower(strings.TrimSpace(teams.Away))
		switch {
		case home != "" && strings.Contains(p, home):
			return verdict(score.Home > score.Away)
		case away != "" && strings.Contains(p, away):
			return verdict(score.Away > score.Home)
		}
	}

	if drawRe.MatchString(p) {
		return verdict(score.Home == score.Away)
	}

	if overRe.MatchString(p) {
		return verdict(float64(score.Total()) > Threshold(p))
	}

	if underRe.MatchString(p) {
		return verdict(float64(score.Total()) < Threshold(p))
	}

	return Pending
}

// Threshold extracts the first number of pick, accepting a comma as the
// decimal separator. It falls back to DefaultThreshold.
func Threshold(pick string) float64 {
	m := numberRe.FindString(pick)
	if m == "" {
		return DefaultThreshold
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return DefaultThreshold
	}
	return v
}

func verdict(ok bool) Verdict {
	if ok {
		return Winning
	}
	return Losing
}
