package identity

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

// UserStore is what provisioning needs from the user repository.
type UserStore interface {
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	LinkGoogleID(ctx context.Context, id, googleID string) error
	Create(ctx context.Context, u *model.User) error
}

type Provisioner struct {
	Users UserStore
	Log   *zap.Logger
}

func NewProvisioner(users UserStore, log *zap.Logger) *Provisioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{Users: users, Log: log}
}

// Provision returns the account for p, linking an existing account with
// the same email or creating a new one.
func (pv *Provisioner) Provision(ctx context.Context, p Profile) (*model.User, error) {
	u, err := pv.Users.GetByGoogleID(ctx, p.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	u, err = pv.Users.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		if err := pv.Users.LinkGoogleID(ctx, u.ID, p.Subject); err != nil {
			return nil, err
		}
		u.GoogleID = &p.Subject
		pv.Log.Info("linked identity to existing account", zap.String("user_id", u.ID))
		return u, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	sub := p.Subject
	u = &model.User{GoogleID: &sub, Username: displayName(p), Email: p.Email}
	if err := pv.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// concurrent first login
			return pv.Users.GetByEmail(ctx, p.Email)
		}
		return nil, err
	}
	pv.Log.Info("account created", zap.String("user_id", u.ID))
	return u, nil
}

func displayName(p Profile) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
