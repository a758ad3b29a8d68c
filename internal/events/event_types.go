package events

import (
	"time"

	"github.com/spec-kit/researcher-directory/internal/domain"
)

// EventType enumerates supported audit event identifiers.
type EventType string

const (
	EventLoginSucceeded    EventType = "login_succeeded"
	EventLoginFailed       EventType = "login_failed"
	EventLogout            EventType = "logout"
	EventUserCreated       EventType = "user_created"
	EventUserUpdated       EventType = "user_updated"
	EventUserDeleted       EventType = "user_deleted"
	EventProfileUpdated    EventType = "profile_updated"
	EventRateLimitExceeded EventType = "rate_limit_exceeded"
)

// Event represents an audit event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LoginPayload describes login attempts, successful or not.
type LoginPayload struct {
	Email        string      `json:"email"`
	ResearcherID string      `json:"researcher_id,omitempty"`
	Role         domain.Role `json:"role,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

// UserChangePayload describes admin changes to a directory member.
type UserChangePayload struct {
	ResearcherID string      `json:"researcher_id"`
	ActorID      string      `json:"actor_id"`
	Role         domain.Role `json:"role,omitempty"`
}

// RateLimitPayload describes an exhausted quota.
type RateLimitPayload struct {
	ClientAddress string `json:"client_address"`
	Class         string `json:"class"`
	RetryAfterSec int    `json:"retry_after_sec"`
}
