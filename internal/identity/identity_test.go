package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

func TestGoogleIdentify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"sub":"g-42","email":"fan@example.com","email_verified":true,"name":"Fan"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogle("id", "secret", "http://localhost/auth/google/callback")
	require.NotNil(t, g)
	g.Config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.UserInfoURL = srv.URL + "/userinfo"

	assert.Contains(t, g.AuthCodeURL("st-1"), "state=st-1")

	p, err := g.Identify(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, Profile{Subject: "g-42", Email: "fan@example.com", Name: "Fan"}, p)
}

func TestGoogleIdentifyUserinfoFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogle("id", "secret", "")
	g.Config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
	g.UserInfoURL = srv.URL + "/userinfo"

	_, err := g.Identify(context.Background(), "code-1")
	require.ErrorIs(t, err, ErrExchange)
}

func TestGoogleIdentifyRejectsUnverifiedEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sub":"g-7","email":"admin@example.com","email_verified":false}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogle("id", "secret", "")
	g.Config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
	g.UserInfoURL = srv.URL + "/userinfo"

	p, err := g.Identify(context.Background(), "code-1")
	require.ErrorIs(t, err, ErrUnverifiedEmail)
	assert.Empty(t, p.Subject)
}

func TestNewGoogleUnconfigured(t *testing.T) {
	assert.Nil(t, NewGoogle("", "", ""))
	var g *Google
	_, err := g.Identify(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)
}

type memUsers struct{ byID map[string]*model.User }

func (m *memUsers) GetByGoogleID(_ context.Context, gid string) (*model.User, error) {
	for _, u := range m.byID {
		if u.GoogleID != nil && *u.GoogleID == gid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) LinkGoogleID(_ context.Context, id, gid string) error {
	m.byID[id].GoogleID = &gid
	return nil
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	u.ID = "new-" + u.Email
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func TestProvision(t *testing.T) {
	store := &memUsers{byID: map[string]*model.User{
		"u1": {ID: "u1", Email: "old@example.com", Username: "old"},
	}}
	pv := NewProvisioner(store, nil)
	ctx := context.Background()

	// creates
	u, err := pv.Provision(ctx, Profile{Subject: "g-1", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new-new@example.com", u.ID)
	assert.Equal(t, "new", u.Username)

	// finds by subject on the next login
	again, err := pv.Provision(ctx, Profile{Subject: "g-1", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Len(t, store.byID, 2)

	// links by email
	linked, err := pv.Provision(ctx, Profile{Subject: "g-2", Email: "old@example.com", Name: "Old Fan"})
	require.NoError(t, err)
	assert.Equal(t, "u1", linked.ID)
	require.NotNil(t, store.byID["u1"].GoogleID)
	assert.Equal(t, "g-2", *store.byID["u1"].GoogleID)
	assert.Equal(t, "old", linked.Username)
}
