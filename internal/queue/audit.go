package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AuditLog appends one human readable line per event to a file.
type AuditLog struct {
	Path string
	mu   sync.Mutex
}

// NewAuditLog returns an AuditLog writing to path.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{Path: path}
}

// Handle decodes one broker message and appends its line.
func (a *AuditLog) Handle(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := FormatLine(env)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(a.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders env as a single line.
func FormatLine(env Envelope) (string, error) {
	switch env.Type {
	case TipCreated:
		var ev TipCreatedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("payload: %w", err)
		}
		return fmt.Sprintf("[%s] Tip created | tip_id=%s | league=%q | match=%q | type=%s | by=%s",
			env.OccurredAt, ev.TipID, ev.League, ev.Match, ev.Visibility, ev.CreatedBy), nil
	case TipSettled:
		var ev TipSettledEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("payload: %w", err)
		}
		return fmt.Sprintf("[%s] Tip settled | tip_id=%s | match=%q | prono=%q | %s -> %s | by=%s",
			env.OccurredAt, ev.TipID, ev.Match, ev.Pick, ev.Previous, ev.Outcome, ev.SettledBy), nil
	case TipDeleted:
		var ev TipDeletedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("payload: %w", err)
		}
		return fmt.Sprintf("[%s] Tip deleted | tip_id=%s | by=%s", env.OccurredAt, ev.TipID, ev.DeletedBy), nil
	case MembershipChanged:
		var ev MembershipChangedEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return "", fmt.Errorf("payload: %w", err)
		}
		return fmt.Sprintf("[%s] Membership changed | user_id=%s | email=%s | vip=%t | reason=%s | stripe_event=%s",
			env.OccurredAt, ev.UserID, ev.Email, ev.IsVIP, ev.Reason, ev.StripeEventID), nil
	}
	return "", fmt.Errorf("unknown event type %q", env.Type)
}
