package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrNotConfigured = errors.New("payments not configured")

// CheckoutRequest describes a VIP subscription purchase.
type CheckoutRequest struct {
	Email      string
	UserID     string // empty for anonymous buyers
	SuccessURL string
	CancelURL  string
}

// Payments creates hosted checkout and billing portal sessions and returns
// their URLs.
type Payments interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortal(ctx context.Context, customerID, returnURL string) (string, error)
}

// StripePayments implements Payments on the Stripe API.
type StripePayments struct {
	api     *client.API
	priceID string
}

// NewStripePayments returns nil when key or price is missing.
func NewStripePayments(secretKey, priceID string) *StripePayments {
	if secretKey == "" || priceID == "" {
		return nil
	}
	return &StripePayments{api: client.New(secretKey, nil), priceID: priceID}
}

func (p *StripePayments) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	if p == nil {
		return "", ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(p.priceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	if req.UserID != "" {
		params.ClientReferenceID = stripe.String(req.UserID)
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	return s.URL, nil
}

func (p *StripePayments) CreatePortal(ctx context.Context, customerID, returnURL string) (string, error) {
	if p == nil {
		return "", ErrNotConfigured
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe portal: %w", err)
	}
	return s.URL, nil
}
