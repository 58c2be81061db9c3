package model

import (
	"strings"
	"time"
)

// Visibility controls which audience may read a tip.
type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityVIP    Visibility = "vip"
)

// Valid reports whether v is one of the known audiences.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityVIP
}

// Column widths of the tips table, in characters.
const (
	MaxLeagueLen = 120
	MaxMatchLen  = 255
	MaxPickLen   = 255
	MaxTagLen    = 60
)

// Outcome is the settled state of a tip as recorded by an administrator.
type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomePending Outcome = "pending"
)

// Valid reports whether o is one of the three recorded outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWon, OutcomeLost, OutcomePending:
		return true
	}
	return false
}

// ParseOutcome normalizes user input into an Outcome. The legacy values
// "gagnant" and "perdant" are still accepted from older admin clients.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "won", "gagnant":
		return OutcomeWon, true
	case "lost", "perdant":
		return OutcomeLost, true
	case "pending":
		return OutcomePending, true
	}
	return "", false
}

// Tip represents a row of the `tips` table and is also the JSON shape
// returned by the API.
//
// Fields:
//
//	ID         - uuid primary key.
//	League     - competition name, free text.
//	Match      - fixture label such as "PSG - OM".
//	Pick       - the prediction itself.
//	Odds       - decimal odds; nil when the admin did not provide any.
//	Date       - kick-off time of the fixture.
//	Visibility - public or vip.
//	Tag        - optional short label.
//	Analysis   - optional long form reasoning.
//	Outcome    - won, lost or pending.
//	CreatedAt  - insertion time, never updated.
type Tip struct {
	ID         string     `json:"id"`
	League     string     `json:"league"`
	Match      string     `json:"match"`
	Pick       string     `json:"prono"`
	Odds       *float64   `json:"cote"`
	Date       time.Time  `json:"date"`
	Visibility Visibility `json:"type"`
	Tag        string     `json:"tag"`
	Analysis   string     `json:"analyse"`
	Outcome    Outcome    `json:"resultat"`
	CreatedAt  time.Time  `json:"createdAt"`
}
