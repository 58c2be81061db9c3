package billing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/metrics"
	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/queue"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

// Result of handling one event.
type Result string

const (
	Applied   Result = "applied"
	Unchanged Result = "unchanged"
	Ignored   Result = "ignored"
	Duplicate Result = "duplicate"
)

// UserStore is the slice of the user repository billing needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetBySubscriptionID(ctx context.Context, subID string) (*model.User, error)
	UpdateMembership(ctx context.Context, id string, m model.Membership) error
}

// Emitter publishes domain events, best effort.
type Emitter interface {
	Emit(ctx context.Context, t queue.EventType, payload any)
}

type Service struct {
	Users  UserStore
	Dedupe Deduper // optional
	Events Emitter // optional
	Log    *zap.Logger
}

func NewService(users UserStore, dedupe Deduper, events Emitter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Users: users, Dedupe: dedupe, Events: events, Log: log}
}

// Handle applies ev to the member it concerns. Events for unknown members
// or of unhandled types are acknowledged as Ignored so the provider stops
// retrying. On error the dedupe claim is released.
func (s *Service) Handle(ctx context.Context, ev Event) (res Result, err error) {
	defer func() {
		label := string(res)
		if err != nil {
			label = "error"
		}
		metrics.WebhookEvents.WithLabelValues(ev.Type, label).Inc()
	}()

	if s.Dedupe != nil && ev.ID != "" {
		fresh, derr := s.Dedupe.Claim(ctx, ev.ID)
		switch {
		case derr != nil:
			// fail open, Apply is idempotent anyway
			s.Log.Warn("webhook dedupe unavailable", zap.String("event_id", ev.ID), zap.Error(derr))
		case !fresh:
			return Duplicate, nil
		default:
			defer func() {
				if err != nil {
					if rerr := s.Dedupe.Release(context.WithoutCancel(ctx), ev.ID); rerr != nil {
						s.Log.Warn("webhook dedupe release failed", zap.String("event_id", ev.ID), zap.Error(rerr))
					}
				}
			}()
		}
	}

	u, err := s.resolve(ctx, ev)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.Log.Info("webhook for unknown member",
			zap.String("event_id", ev.ID), zap.String("type", ev.Type))
		return Ignored, nil
	}
	if err != nil {
		return "", err
	}
	if u == nil {
		return Ignored, nil
	}

	next, changed := Apply(u.Membership(), ev)
	if !changed {
		return Unchanged, nil
	}
	if err := s.Users.UpdateMembership(ctx, u.ID, next); err != nil {
		return "", err
	}
	s.Log.Info("membership updated",
		zap.String("user_id", u.ID),
		zap.Bool("is_vip", next.IsVIP),
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type))
	if s.Events != nil {
		s.Events.Emit(ctx, queue.MembershipChanged, queue.MembershipChangedEvent{
			UserID:        u.ID,
			Email:         u.Email,
			IsVIP:         next.IsVIP,
			Reason:        ev.Type,
			StripeEventID: ev.ID,
		})
	}
	return Applied, nil
}

// resolve finds the member an event is about. A nil user with a nil error
// means the event type is not handled.
func (s *Service) resolve(ctx context.Context, ev Event) (*model.User, error) {
	switch ev.Type {
	case CheckoutCompleted:
		if ev.UserID != "" {
			u, err := s.Users.GetByID(ctx, ev.UserID)
			if err == nil || !errors.Is(err, repository.ErrUserNotFound) {
				return u, err
			}
		}
		if ev.Email == "" {
			return nil, repository.ErrUserNotFound
		}
		return s.Users.GetByEmail(ctx, ev.Email)
	case SubscriptionUpdated, SubscriptionDeleted:
		if ev.SubscriptionID == "" {
			return nil, repository.ErrUserNotFound
		}
		return s.Users.GetBySubscriptionID(ctx, ev.SubscriptionID)
	}
	return nil, nil
}
