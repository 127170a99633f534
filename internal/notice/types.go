// Package notice provides transient, auto-dismissing messages shown to the
// user while registering, editing and exporting records.
package notice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind represents the category of a notice
type Kind string

const (
	// KindWarning is used for outcomes the user should notice, such as duplicates
	KindWarning Kind = "warning"
	// KindSuccess confirms a completed action
	KindSuccess Kind = "success"
	// KindError reports a failed action
	KindError Kind = "error"
	// KindInfo is neutral information
	KindInfo Kind = "info"
)

// Notice is a single user-facing message
type Notice struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	// ExpiresAt is when the notice dismisses itself
	ExpiresAt time.Time `json:"expiresAt"`
}

// newNotice creates a notice with a unique ID that expires after ttl
func newNotice(kind Kind, title, message string, now time.Time, ttl time.Duration) *Notice {
	return &Notice{
		ID:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Clone returns a copy safe to hand to another goroutine
func (n *Notice) Clone() *Notice {
	if n == nil {
		return nil
	}
	clone := *n
	return &clone
}

// IsExpired reports whether the notice should no longer be shown at now
func (n *Notice) IsExpired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}

// String renders the notice as a single terminal line
func (n *Notice) String() string {
	if n.Title == "" {
		return fmt.Sprintf("[%s] %s", n.Kind, n.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", n.Kind, n.Title, n.Message)
}
