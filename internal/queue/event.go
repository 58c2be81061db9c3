// Package queue defines message payloads exchanged over the message broker
// and the consumers that turn them into audit log lines.
package queue

import (
	"encoding/json"
	"time"
)

// EventType names a domain event. It doubles as the Kafka message key.
type EventType string

const (
	TipCreated        EventType = "tip.created"
	TipSettled        EventType = "tip.settled"
	TipDeleted        EventType = "tip.deleted"
	MembershipChanged EventType = "membership.changed"
)

// Envelope wraps every payload with its type and emission time so a single
// queue or topic can carry all events.
type Envelope struct {
	Type       EventType       `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into an Envelope stamped with the current
// UTC time.
func NewEnvelope(t EventType, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, OccurredAt: time.Now().UTC().Format(time.RFC3339), Payload: body}, nil
}

// TipCreatedEvent is published when an administrator adds a tip.
type TipCreatedEvent struct {
	TipID      string `json:"tip_id"`
	League     string `json:"league"`
	Match      string `json:"match"`
	Visibility string `json:"visibility"`
	CreatedBy  string `json:"created_by"`
}

// TipSettledEvent is published when a tip outcome is recorded by hand.
type TipSettledEvent struct {
	TipID     string `json:"tip_id"`
	Match     string `json:"match"`
	Pick      string `json:"pick"`
	Previous  string `json:"previous"`
	Outcome   string `json:"outcome"`
	SettledBy string `json:"settled_by"`
}

// TipDeletedEvent is published when a tip is removed.
type TipDeletedEvent struct {
	TipID     string `json:"tip_id"`
	DeletedBy string `json:"deleted_by"`
}

// MembershipChangedEvent is published when a billing event flips the VIP
// flag of a user.
type MembershipChangedEvent struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	IsVIP         bool   `json:"is_vip"`
	Reason        string `json:"reason"`
	StripeEventID string `json:"stripe_event_id"`
}
