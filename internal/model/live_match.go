package model

import "time"

// Teams holds the two sides of a fixture.
type Teams struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Score holds goals per side.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Total returns the number of goals scored by both sides.
func (s Score) Total() int { return s.Home + s.Away }

// LiveMatch is an in-play fixture, either entered manually by an operator or
// mapped from the external sports feed. It is never persisted.
type LiveMatch struct {
	ID        string    `json:"id"`
	Teams     Teams     `json:"teams"`
	Score     Score     `json:"score"`
	Status    string    `json:"status"`
	Minute    *int      `json:"minute"`
	League    string    `json:"league"`
	Country   string    `json:"country,omitempty"`
	Date      time.Time `json:"date"`
	AddedBy   string    `json:"addedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fixture status codes as reported by the sports feed.
const (
	StatusLive     = "LIVE"
	StatusFinished = "FT"
)

var (
	inPlayStatuses   = map[string]bool{"LIVE": true, "1H": true, "HT": true, "2H": true, "ET": true, "BT": true, "P": true}
	finishedStatuses = map[string]bool{"FT": true, "AET": true, "PEN": true}
)

// IsInPlay reports whether status describes a fixture currently being played.
func IsInPlay(status string) bool { return inPlayStatuses[status] }

// IsFinished reports whether status describes a completed fixture.
func IsFinished(status string) bool { return finishedStatuses[status] }
