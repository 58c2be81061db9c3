package livematch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pronoelite/pronoelite-api/internal/model"
)

// DefaultFeedURL is the public API-Sports football endpoint.
const DefaultFeedURL = "https://v3.football.api-sports.io"

var (
	// ErrFeedNotConfigured is returned when no API key was provided.
	ErrFeedNotConfigured = errors.New("sports feed api key not configured")
	// ErrUpstream wraps any failure reported by the sports feed.
	ErrUpstream = errors.New("sports feed error")
	// ErrFixtureNotFound is returned when the feed knows no such fixture.
	ErrFixtureNotFound = errors.New("fixture not found")
)

// Feed is a thin client for the API-Sports fixtures endpoint. It performs
// a single request per call, without retries or caching.
type Feed struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	now     func() time.Time
}

// NewFeed builds a Feed. An empty baseURL selects DefaultFeedURL.
func NewFeed(baseURL, apiKey string, timeout time.Duration) *Feed {
	if baseURL == "" {
		baseURL = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Feed{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Configured reports whether the feed can be queried.
func (f *Feed) Configured() bool { return f != nil && f.APIKey != "" }

// Today returns today's fixtures that are in play or finished.
func (f *Feed) Today(ctx context.Context) ([]model.LiveMatch, error) {
	q := url.Values{"date": {f.now().UTC().Format("2006-01-02")}}
	fixtures, err := f.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]model.LiveMatch, 0, len(fixtures))
	for _, fx := range fixtures {
		st := fx.Fixture.Status.Short
		if !model.IsInPlay(st) && !model.IsFinished(st) {
			continue
		}
		out = append(out, fx.toLiveMatch())
	}
	return out, nil
}

// Fixture returns a single fixture whatever its status.
func (f *Feed) Fixture(ctx context.Context, id string) (model.LiveMatch, error) {
	fixtures, err := f.fetch(ctx, url.Values{"id": {id}})
	if err != nil {
		return model.LiveMatch{}, err
	}
	if len(fixtures) == 0 {
		return model.LiveMatch{}, ErrFixtureNotFound
	}
	return fixtures[0].toLiveMatch(), nil
}

func (f *Feed) fetch(ctx context.Context, q url.Values) ([]apiFixture, error) {
	if !f.Configured() {
		return nil, ErrFeedNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/fixtures?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apisports-key", f.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if msg := payload.errorMessage(); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	return payload.Response, nil
}

type apiResponse struct {
	Errors   json.RawMessage `json:"errors"`
	Response []apiFixture    `json:"response"`
}

// errorMessage flattens the "errors" member, which the API sends either as
// an empty array or as an object keyed by field.
func (r apiResponse) errorMessage() string {
	raw := strings.TrimSpace(string(r.Errors))
	if raw == "" || raw == "[]" || raw == "{}" || raw == "null" {
		return ""
	}
	var byField map[string]string
	if err := json.Unmarshal(r.Errors, &byField); err == nil {
		parts := make([]string, 0, len(byField))
		for k, v := range byField {
			parts = append(parts, k+": "+v)
		}
		return strings.Join(parts, "; ")
	}
	return raw
}

type apiFixture struct {
	Fixture struct {
		ID     int       `json:"id"`
		Date   time.Time `json:"date"`
		Status struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"league"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

func (fx apiFixture) toLiveMatch() model.LiveMatch {
	m := model.LiveMatch{
		ID:        strconv.Itoa(fx.Fixture.ID),
		Teams:     model.Teams{Home: fx.Teams.Home.Name, Away: fx.Teams.Away.Name},
		Status:    fx.Fixture.Status.Short,
		Minute:    fx.Fixture.Status.Elapsed,
		League:    fx.League.Name,
		Country:   fx.League.Country,
		Date:      fx.Fixture.Date.UTC(),
		UpdatedAt: fx.Fixture.Date.UTC(),
	}
	if fx.Goals.Home != nil {
		m.Score.Home = *fx.Goals.Home
	}
	if fx.Goals.Away != nil {
		m.Score.Away = *fx.Goals.Away
	}
	return m
}
