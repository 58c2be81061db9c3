// Package livematch holds in-play fixtures: a process-local list that
// operators fill by hand, and a client for the external sports feed.
package livematch

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pronoelite/pronoelite-api/internal/model"
)

// DefaultLeague labels manually entered fixtures without a competition.
const DefaultLeague = "Match personnalisé"

// ErrNotFound is returned when no live match has the requested id.
var ErrNotFound = errors.New("live match not found")

// ErrTeamsRequired is returned when a manual entry lacks a team name.
var ErrTeamsRequired = errors.New("homeTeam and awayTeam are required")

// NewMatch carries the fields accepted when adding a match by hand.
type NewMatch struct {
	HomeTeam  string
	AwayTeam  string
	ScoreHome int
	ScoreAway int
	Minute    *int
	Status    string
	League    string
	AddedBy   string
}

// Patch carries the fields an operator may change. Nil fields are kept.
type Patch struct {
	ScoreHome *int
	ScoreAway *int
	Minute    *int
	Status    *string
}

// Store is the process-scoped list of manually tracked matches. The mutex
// only protects memory; concurrent writers are applied in arrival order
// without any further guarantee. Contents are lost on restart.
type Store struct {
	mu      sync.Mutex
	matches []model.LiveMatch
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// Add appends a new match and returns it.
func (s *Store) Add(in NewMatch) (model.LiveMatch, error) {
	home, away := strings.TrimSpace(in.HomeTeam), strings.TrimSpace(in.AwayTeam)
	if home == "" || away == "" {
		return model.LiveMatch{}, ErrTeamsRequired
	}
	status := strings.ToUpper(strings.TrimSpace(in.Status))
	if status == "" {
		status = model.StatusLive
	}
	league := strings.TrimSpace(in.League)
	if league == "" {
		league = DefaultLeague
	}
	addedBy := in.AddedBy
	if addedBy == "" {
		addedBy = "user"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	m := model.LiveMatch{
		ID:        uuid.NewString(),
		Teams:     model.Teams{Home: home, Away: away},
		Score:     model.Score{Home: in.ScoreHome, Away: in.ScoreAway},
		Status:    status,
		Minute:    in.Minute,
		League:    league,
		Date:      now,
		AddedBy:   addedBy,
		UpdatedAt: now,
	}
	s.matches = append(s.matches, m)
	return m, nil
}

// List returns a copy of every tracked match in insertion order.
func (s *Store) List() []model.LiveMatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LiveMatch, len(s.matches))
	copy(out, s.matches)
	return out
}

// Get returns one match.
func (s *Store) Get(id string) (model.LiveMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.matches[i], nil
	}
	return model.LiveMatch{}, ErrNotFound
}

// Update applies p to the match and returns the new state.
func (s *Store) Update(id string, p Patch) (model.LiveMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return model.LiveMatch{}, ErrNotFound
	}
	m := &s.matches[i]
	if p.ScoreHome != nil {
		m.Score.Home = *p.ScoreHome
	}
	if p.ScoreAway != nil {
		m.Score.Away = *p.ScoreAway
	}
	if p.Minute != nil {
		minute := *p.Minute
		m.Minute = &minute
	}
	if p.Status != nil {
		if st := strings.ToUpper(strings.TrimSpace(*p.Status)); st != "" {
			m.Status = st
		}
	}
	m.UpdatedAt = s.now()
	return *m, nil
}

// Delete removes a match and returns it.
func (s *Store) Delete(id string) (model.LiveMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return model.LiveMatch{}, ErrNotFound
	}
	m := s.matches[i]
	s.matches = append(s.matches[:i], s.matches[i+1:]...)
	return m, nil
}

// Clear drops every match and reports how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.matches)
	s.matches = nil
	return n
}

func (s *Store) index(id string) int {
	for i := range s.matches {
		if s.matches[i].ID == id {
			return i
		}
	}
	return -1
}
