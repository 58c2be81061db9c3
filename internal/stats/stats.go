// Package stats computes success rates and rollups over a set of tips.
// Every function is pure and safe on empty input.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/pronoelite/pronoelite-api/internal/model"
)

// MaxMonths caps the monthly rollup.
const MaxMonths = 12

// Summary is the headline statistics block.
type Summary struct {
	Total   int     `json:"total"`
	Won     int     `json:"gagnants"`
	Lost    int     `json:"perdants"`
	Pending int     `json:"enAttente"`
	WinRate float64 `json:"tauxReussite"`
	AvgOdds float64 `json:"coteMoyenne"`
}

// LeagueStats is one row of the per-league rollup.
type LeagueStats struct {
	League  string  `json:"league"`
	Total   int     `json:"total"`
	Won     int     `json:"gagnants"`
	Lost    int     `json:"perdants"`
	Pending int     `json:"enAttente"`
	WinRate float64 `json:"tauxReussite"`
}

// MonthStats is one row of the monthly rollup.
type MonthStats struct {
	Month   string  `json:"month"`
	Total   int     `json:"total"`
	Won     int     `json:"gagnants"`
	Lost    int     `json:"perdants"`
	Pending int     `json:"enAttente"`
	WinRate float64 `json:"tauxReussite"`
}

// Counts is the raw outcome tally.
type Counts struct {
	Won     int `json:"gagnant"`
	Lost    int `json:"perdant"`
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

func (c *Counts) add(o model.Outcome) {
	c.Total++
	switch o {
	case model.OutcomeWon:
		c.Won++
	case model.OutcomeLost:
		c.Lost++
	default:
		c.Pending++
	}
}

// winRate is won over total, as a percentage with one decimal.
func (c Counts) winRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return round(float64(c.Won)/float64(c.Total)*100, 1)
}

// OutcomeCounts tallies tips per outcome.
func OutcomeCounts(tips []model.Tip) Counts {
	var c Counts
	for _, t := range tips {
		c.add(t.Outcome)
	}
	return c
}

// Aggregate computes the summary of tips. Tips without odds are left out of
// the odds average.
func Aggregate(tips []model.Tip) Summary {
	c := OutcomeCounts(tips)
	var sum float64
	var n int
	for _, t := range tips {
		if t.Odds != nil {
			sum += *t.Odds
			n++
		}
	}
	s := Summary{Total: c.Total, Won: c.Won, Lost: c.Lost, Pending: c.Pending, WinRate: c.winRate()}
	if n > 0 {
		s.AvgOdds = round(sum/float64(n), 2)
	}
	return s
}

// ByLeague groups tips per league, best win rate first. Ties are broken by
// league name.
func ByLeague(tips []model.Tip) []LeagueStats {
	groups := make(map[string]*Counts)
	for _, t := range tips {
		c, ok := groups[t.League]
		if !ok {
			c = &Counts{}
			groups[t.League] = c
		}
		c.add(t.Outcome)
	}
	out := make([]LeagueStats, 0, len(groups))
	for league, c := range groups {
		out = append(out, LeagueStats{
			League: league, Total: c.Total, Won: c.Won, Lost: c.Lost, Pending: c.Pending,
			WinRate: c.winRate(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].League < out[j].League
	})
	return out
}

// ByMonth groups tips by the UTC year and month of their fixture date, most
// recent month first, keeping at most MaxMonths groups.
func ByMonth(tips []model.Tip) []MonthStats {
	groups := make(map[string]*Counts)
	for _, t := range tips {
		key := MonthKey(t.Date)
		c, ok := groups[key]
		if !ok {
			c = &Counts{}
			groups[key] = c
		}
		c.add(t.Outcome)
	}
	out := make([]MonthStats, 0, len(groups))
	for month, c := range groups {
		out = append(out, MonthStats{
			Month: month, Total: c.Total, Won: c.Won, Lost: c.Lost, Pending: c.Pending,
			WinRate: c.winRate(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > MaxMonths {
		out = out[:MaxMonths]
	}
	return out
}

// MonthKey formats t as "YYYY-MM" in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
