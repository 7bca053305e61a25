package session

import (
	"strings"
	"time"
)

// CallSession tracks one planned-or-executed coaching call through its
// lifecycle. Rows are append-only history: sessions are never deleted,
// only patched forward through the status machine.
//
// At most one session should exist per (user, call type, calendar date).
// That is enforced by the scheduler's query-then-insert idempotency
// check, not by a uniqueness constraint; a duplicate row from two
// overlapping job runs is an accepted rarity and readers must pick
// deterministically (first by scheduled_for).
type CallSession struct {
	ID     string   `json:"id" db:"id"`
	UserID string   `json:"user_id" db:"user_id"`
	Type   CallType `json:"call_type" db:"call_type"`

	// ScheduledFor is the absolute time the call was planned for (UTC).
	ScheduledFor time.Time `json:"scheduled_for" db:"scheduled_for"`

	Status Status `json:"status" db:"status"`

	// ProviderCallID is assigned by the voice provider once a call is placed.
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`

	AttemptsCount int        `json:"attempts_count" db:"attempts_count"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty" db:"last_attempt_at"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty" db:"next_attempt_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallType string

const (
	CallTypeOnboarding CallType = "onboarding"
	CallTypeWeekly     CallType = "weekly"
	CallTypeDaily      CallType = "daily"
)

// NormalizeCallType maps legacy aliases to the canonical three-value
// enum. Earlier clients and assistant configs used "evening" and
// "*-agent" suffixed names; internal logic must only ever see the
// canonical values, so every boundary runs inputs through here.
func NormalizeCallType(raw string) (CallType, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "-agent")
	switch s {
	case "onboarding":
		return CallTypeOnboarding, true
	case "weekly":
		return CallTypeWeekly, true
	case "daily", "evening":
		return CallTypeDaily, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusMissed     Status = "missed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusMissed, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is legal.
//
// scheduled -> in_progress -> completed, with missed and failed as
// alternate terminals. scheduled may jump straight to completed because
// a fast webhook can beat the trigger's own in_progress patch.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StatusScheduled:
		return next == StatusInProgress || next == StatusCompleted || next == StatusMissed || next == StatusFailed
	case StatusInProgress:
		return next == StatusCompleted || next == StatusMissed || next == StatusFailed
	default:
		return false
	}
}
