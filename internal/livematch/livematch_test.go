package livematch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestStoreAddDefaults(t *testing.T) {
	s := NewStore()

	_, err := s.Add(NewMatch{HomeTeam: "PSG"})
	require.ErrorIs(t, err, ErrTeamsRequired)

	m, err := s.Add(NewMatch{HomeTeam: " PSG ", AwayTeam: "OM", ScoreHome: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "PSG", m.Teams.Home)
	assert.Equal(t, "LIVE", m.Status)
	assert.Equal(t, DefaultLeague, m.League)
	assert.Equal(t, "user", m.AddedBy)
	assert.Nil(t, m.Minute)
	assert.Equal(t, 1, m.Score.Home)
}

func TestStoreUpdateDeleteClear(t *testing.T) {
	s := NewStore()
	a, err := s.Add(NewMatch{HomeTeam: "Lyon", AwayTeam: "Nice"})
	require.NoError(t, err)
	b, err := s.Add(NewMatch{HomeTeam: "Lens", AwayTeam: "Lille", ScoreAway: 2})
	require.NoError(t, err)

	status := "ht"
	got, err := s.Update(a.ID, Patch{ScoreHome: intp(1), Minute: intp(45), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score.Home)
	assert.Equal(t, 0, got.Score.Away)
	assert.Equal(t, 45, *got.Minute)
	assert.Equal(t, "HT", got.Status)

	// a zero score is a real update
	got, err = s.Update(b.ID, Patch{ScoreAway: intp(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Score.Away)

	_, err = s.Update("missing", Patch{})
	require.ErrorIs(t, err, ErrNotFound)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)

	deleted, err := s.Delete(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	_, err = s.Get(a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(a.ID)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, s.Clear())
	assert.Empty(t, s.List())
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := s.Add(NewMatch{HomeTeam: "A", AwayTeam: "B"})
			if err == nil {
				_, _ = s.Update(m.ID, Patch{ScoreHome: intp(1)})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.List(), 50)
}

const fixturesBody = `{
  "errors": [],
  "response": [
    {"fixture": {"id": 101, "date": "2024-03-09T20:00:00+00:00", "status": {"short": "2H", "elapsed": 67}},
     "league": {"name": "Ligue 1", "country": "France"},
     "teams": {"home": {"name": "PSG"}, "away": {"name": "OM"}},
     "goals": {"home": 2, "away": 1}},
    {"fixture": {"id": 102, "date": "2024-03-09T21:00:00+00:00", "status": {"short": "NS", "elapsed": null}},
     "league": {"name": "Ligue 1", "country": "France"},
     "teams": {"home": {"name": "Lyon"}, "away": {"name": "Nice"}},
     "goals": {"home": null, "away": null}},
    {"fixture": {"id": 103, "date": "2024-03-09T15:00:00+00:00", "status": {"short": "FT", "elapsed": 90}},
     "league": {"name": "Serie A", "country": "Italy"},
     "teams": {"home": {"name": "Inter"}, "away": {"name": "Milan"}},
     "goals": {"home": 1, "away": 1}}
  ]
}`

func TestFeedToday(t *testing.T) {
	var gotKey, gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		gotDate = r.URL.Query().Get("date")
		assert.Equal(t, "/fixtures", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixturesBody))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, "secret", time.Second)
	f.now = func() time.Time { return time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC) }

	matches, err := f.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "2024-03-09", gotDate)
	require.Len(t, matches, 2)

	assert.Equal(t, "101", matches[0].ID)
	assert.Equal(t, "PSG", matches[0].Teams.Home)
	assert.Equal(t, 2, matches[0].Score.Home)
	assert.Equal(t, 67, *matches[0].Minute)
	assert.Equal(t, "France", matches[0].Country)
	assert.Equal(t, "FT", matches[1].Status)
}

func TestFeedFixture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "404" {
			_, _ = w.Write([]byte(`{"errors": [], "response": []}`))
			return
		}
		_, _ = w.Write([]byte(fixturesBody))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, "secret", time.Second)
	m, err := f.Fixture(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "OM", m.Teams.Away)

	_, err = f.Fixture(context.Background(), "404")
	require.ErrorIs(t, err, ErrFixtureNotFound)
}

func TestFeedErrors(t *testing.T) {
	_, err := NewFeed("", "", 0).Today(context.Background())
	require.ErrorIs(t, err, ErrFeedNotConfigured)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	_, err = NewFeed(down.URL, "k", time.Second).Today(context.Background())
	require.ErrorIs(t, err, ErrUpstream)

	badKey := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": {"token": "Error/Missing application key."}, "response": []}`))
	}))
	defer badKey.Close()
	_, err = NewFeed(badKey.URL, "k", time.Second).Today(context.Background())
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "Missing application key")
}
