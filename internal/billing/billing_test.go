package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/model"
	"github.com/pronoelite/pronoelite-api/internal/queue"
	"github.com/pronoelite/pronoelite-api/internal/repository"
)

func sp(s string) *string { return &s }

func TestApply(t *testing.T) {
	vip := model.Membership{IsVIP: true, StripeCustomerID: sp("cus_1"), StripeSubscriptionID: sp("sub_1")}

	tests := []struct {
		name    string
		cur     model.Membership
		ev      Event
		want    model.Membership
		changed bool
	}{
		{
			name:    "checkout grants vip",
			ev:      Event{Type: CheckoutCompleted, CustomerID: "cus_1", SubscriptionID: "sub_1"},
			want:    vip,
			changed: true,
		},
		{
			name: "checkout replay is a no-op",
			cur:  vip,
			ev:   Event{Type: CheckoutCompleted, CustomerID: "cus_1", SubscriptionID: "sub_1"},
			want: vip,
		},
		{
			name:    "deletion revokes and clears ids",
			cur:     vip,
			ev:      Event{Type: SubscriptionDeleted, SubscriptionID: "sub_1"},
			want:    model.Membership{},
			changed: true,
		},
		{
			name: "active update keeps vip",
			cur:  vip,
			ev:   Event{Type: SubscriptionUpdated, SubscriptionID: "sub_1", CustomerID: "cus_1", Status: "active"},
			want: vip,
		},
		{
			name:    "unpaid update revokes",
			cur:     vip,
			ev:      Event{Type: SubscriptionUpdated, SubscriptionID: "sub_1", Status: "unpaid"},
			want:    model.Membership{},
			changed: true,
		},
		{
			name: "past_due leaves membership alone",
			cur:  vip,
			ev:   Event{Type: SubscriptionUpdated, SubscriptionID: "sub_1", Status: "past_due"},
			want: vip,
		},
		{
			name: "unknown type",
			cur:  vip,
			ev:   Event{Type: "invoice.paid"},
			want: vip,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := Apply(tc.cur, tc.ev)
			assert.Equal(t, tc.changed, changed)
			assert.Equal(t, tc.want.IsVIP, got.IsVIP)
			assert.Equal(t, tc.want.StripeCustomerID, got.StripeCustomerID)
			assert.Equal(t, tc.want.StripeSubscriptionID, got.StripeSubscriptionID)
		})
	}
}

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"api_version": "2020-08-27",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"customer_email": "Fan@Example.com",
			"client_reference_id": "u1",
			"customer": "cus_1",
			"subscription": "sub_1"
		}}
	}`)

	ev, err := ParseWebhook(payload, sign(payload, secret), secret)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, CheckoutCompleted, ev.Type)
	assert.Equal(t, "Fan@Example.com", ev.Email)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "cus_1", ev.CustomerID)
	assert.Equal(t, "sub_1", ev.SubscriptionID)

	_, err = ParseWebhook(payload, sign(payload, "whsec_other"), secret)
	require.ErrorIs(t, err, ErrBadSignature)

	_, err = ParseWebhook(payload, "", secret)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestParseWebhookSubscription(t *testing.T) {
	const secret = "whsec_test"
	payload := []byte(`{
		"id": "evt_2",
		"object": "event",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_9", "object": "subscription", "status": "canceled", "customer": "cus_9"}}
	}`)
	ev, err := ParseWebhook(payload, sign(payload, secret), secret)
	require.NoError(t, err)
	assert.Equal(t, "sub_9", ev.SubscriptionID)
	assert.Equal(t, "canceled", ev.Status)
	assert.Equal(t, "cus_9", ev.CustomerID)
}

type fakeUsers struct {
	users   map[string]*model.User
	updates int
	failOn  string
}

func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetBySubscriptionID(_ context.Context, sub string) (*model.User, error) {
	return f.find(func(u *model.User) bool {
		return u.StripeSubscriptionID != nil && *u.StripeSubscriptionID == sub
	})
}

func (f *fakeUsers) UpdateMembership(_ context.Context, id string, m model.Membership) error {
	if id == f.failOn {
		return errors.New("db down")
	}
	u := f.users[id]
	u.IsVIP = m.IsVIP
	u.StripeCustomerID = m.StripeCustomerID
	u.StripeSubscriptionID = m.StripeSubscriptionID
	f.updates++
	return nil
}

type memDedupe struct {
	seen     map[string]bool
	released []string
}

func (d *memDedupe) Claim(_ context.Context, id string) (bool, error) {
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedupe) Release(_ context.Context, id string) error {
	delete(d.seen, id)
	d.released = append(d.released, id)
	return nil
}

type recordEmitter struct{ types []queue.EventType }

func (r *recordEmitter) Emit(_ context.Context, t queue.EventType, _ any) {
	r.types = append(r.types, t)
}

func newFixture() (*Service, *fakeUsers, *memDedupe, *recordEmitter) {
	users := &fakeUsers{users: map[string]*model.User{
		"u1": {ID: "u1", Email: "fan@example.com"},
	}}
	dd := &memDedupe{seen: map[string]bool{}}
	em := &recordEmitter{}
	return NewService(users, dd, em, zap.NewNop()), users, dd, em
}

func TestServiceCheckoutByEmail(t *testing.T) {
	svc, users, _, em := newFixture()
	ctx := context.Background()

	res, err := svc.Handle(ctx, Event{ID: "evt_1", Type: CheckoutCompleted, Email: "fan@example.com", CustomerID: "cus_1", SubscriptionID: "sub_1"})
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
	assert.True(t, users.users["u1"].IsVIP)
	assert.Equal(t, []queue.EventType{queue.MembershipChanged}, em.types)

	// redelivery of the same event id
	res, err = svc.Handle(ctx, Event{ID: "evt_1", Type: CheckoutCompleted, Email: "fan@example.com"})
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res)

	// a different event with the same effect
	res, err = svc.Handle(ctx, Event{ID: "evt_2", Type: CheckoutCompleted, UserID: "u1", CustomerID: "cus_1", SubscriptionID: "sub_1"})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res)
	assert.Equal(t, 1, users.updates)
}

func TestServiceSubscriptionDeleted(t *testing.T) {
	svc, users, _, _ := newFixture()
	users.users["u1"].IsVIP = true
	users.users["u1"].StripeSubscriptionID = sp("sub_1")

	res, err := svc.Handle(context.Background(), Event{ID: "evt_3", Type: SubscriptionDeleted, SubscriptionID: "sub_1"})
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
	assert.False(t, users.users["u1"].IsVIP)
	assert.Nil(t, users.users["u1"].StripeSubscriptionID)
}

func TestServiceIgnored(t *testing.T) {
	svc, users, _, em := newFixture()
	ctx := context.Background()

	res, err := svc.Handle(ctx, Event{ID: "evt_4", Type: CheckoutCompleted, Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, Ignored, res)

	res, err = svc.Handle(ctx, Event{ID: "evt_5", Type: "invoice.paid"})
	require.NoError(t, err)
	assert.Equal(t, Ignored, res)

	assert.Zero(t, users.updates)
	assert.Empty(t, em.types)
}

func TestServiceReleasesClaimOnFailure(t *testing.T) {
	svc, users, dd, _ := newFixture()
	users.failOn = "u1"

	_, err := svc.Handle(context.Background(), Event{ID: "evt_6", Type: CheckoutCompleted, UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, []string{"evt_6"}, dd.released)

	users.failOn = ""
	res, err := svc.Handle(context.Background(), Event{ID: "evt_6", Type: CheckoutCompleted, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
}

func TestNewStripePaymentsUnconfigured(t *testing.T) {
	p := NewStripePayments("", "price_1")
	_, err := p.CreateCheckout(context.Background(), CheckoutRequest{})
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = p.CreatePortal(context.Background(), "cus_1", "http://localhost")
	require.ErrorIs(t, err, ErrNotConfigured)
}
