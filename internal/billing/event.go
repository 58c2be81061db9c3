// Package billing turns payment provider notifications into membership
// changes. Provider specific decoding stays in this file and stripe.go; the
// transition itself is pure and idempotent.
package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Event types the membership transition reacts to.
const (
	CheckoutCompleted   = "checkout.session.completed"
	SubscriptionUpdated = "customer.subscription.updated"
	SubscriptionDeleted = "customer.subscription.deleted"
)

// ErrBadSignature is returned when a webhook payload cannot be verified.
var ErrBadSignature = errors.New("invalid webhook signature")

// Event is the provider-neutral view of a billing notification.
type Event struct {
	ID             string
	Type           string
	Email          string // checkout only
	UserID         string // checkout client reference, when the buyer was signed in
	CustomerID     string
	SubscriptionID string
	Status         string // subscription events only
}

// ParseWebhook verifies payload against the Stripe-Signature header and
// decodes it. API version mismatches between the account and the library are
// tolerated since only stable fields are read.
func ParseWebhook(payload []byte, sigHeader, secret string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return DecodeStripeEvent(ev)
}

// DecodeStripeEvent extracts the fields of interest from a Stripe event.
// Unknown types decode to an Event carrying only ID and Type.
func DecodeStripeEvent(ev stripe.Event) (Event, error) {
	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}
	switch out.Type {
	case CheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Email = s.CustomerEmail
		if out.Email == "" && s.CustomerDetails != nil {
			out.Email = s.CustomerDetails.Email
		}
		out.UserID = s.ClientReferenceID
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			out.SubscriptionID = s.Subscription.ID
		}
	case SubscriptionUpdated, SubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		out.SubscriptionID = s.ID
		out.Status = string(s.Status)
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
	}
	return out, nil
}
