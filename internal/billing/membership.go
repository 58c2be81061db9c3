package billing

import "github.com/pronoelite/pronoelite-api/internal/model"

// Apply computes the membership that results from ev. It never looks at
// anything but its inputs, so replaying the same event yields the same
// membership and changed == false.
func Apply(cur model.Membership, ev Event) (next model.Membership, changed bool) {
	next = cur
	switch ev.Type {
	case CheckoutCompleted:
		next.IsVIP = true
		if ev.CustomerID != "" {
			next.StripeCustomerID = strPtr(ev.CustomerID)
		}
		if ev.SubscriptionID != "" {
			next.StripeSubscriptionID = strPtr(ev.SubscriptionID)
		}
	case SubscriptionDeleted:
		next = revoke()
	case SubscriptionUpdated:
		switch ev.Status {
		case "active", "trialing":
			next.IsVIP = true
			next.StripeSubscriptionID = strPtr(ev.SubscriptionID)
			if ev.CustomerID != "" {
				next.StripeCustomerID = strPtr(ev.CustomerID)
			}
		case "canceled", "unpaid", "incomplete_expired":
			next = revoke()
		}
	}
	return next, !equal(cur, next)
}

func revoke() model.Membership { return model.Membership{} }

func equal(a, b model.Membership) bool {
	return a.IsVIP == b.IsVIP &&
		strEq(a.StripeCustomerID, b.StripeCustomerID) &&
		strEq(a.StripeSubscriptionID, b.StripeSubscriptionID)
}

func strEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtr(s string) *string { return &s }
