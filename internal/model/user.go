package model

import "time"

// User represents an application user record as stored in the `users`
// table. Accounts are provisioned on first login through the identity
// provider, so there is no password column.
//
// Fields:
//
//	ID                   - uuid primary key.
//	GoogleID             - subject issued by the identity provider (nullable).
//	Username             - display name, editable by the user.
//	Email                - unique email address.
//	IsVIP                - active paid membership.
//	IsAdmin              - may manage tips and settle results.
//	StripeCustomerID     - payment provider customer (nullable).
//	StripeSubscriptionID - payment provider subscription (nullable).
//	CreatedAt            - timestamp of creation.
type User struct {
	ID                   string    `json:"id"`
	GoogleID             *string   `json:"-"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	IsVIP                bool      `json:"isVIP"`
	IsAdmin              bool      `json:"isAdmin"`
	StripeCustomerID     *string   `json:"-"`
	StripeSubscriptionID *string   `json:"-"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Membership is the subset of a user that billing events are allowed to
// change.
type Membership struct {
	IsVIP                bool
	StripeCustomerID     *string
	StripeSubscriptionID *string
}

// Membership returns the billing-controlled part of u.
func (u User) Membership() Membership {
	return Membership{
		IsVIP:                u.IsVIP,
		StripeCustomerID:     u.StripeCustomerID,
		StripeSubscriptionID: u.StripeSubscriptionID,
	}
}
