package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("session: not found")
	ErrInvalidArgument = errors.New("session: invalid argument")
	// ErrTerminalStatus is returned when a write would move a session
	// out of completed/missed/failed.
	ErrTerminalStatus = errors.New("session: status is terminal")
)

// StatusUpdate patches a session. Nil/zero fields are left untouched;
// the status itself is always written (idempotent absolute write, so a
// redelivered webhook or a racing trigger converges on the last value).
type StatusUpdate struct {
	Status         Status
	ProviderCallID string
	LastAttemptAt  *time.Time
	NextAttemptAt  *time.Time

	// IncrementAttempts bumps attempts_count by one. Only a successful
	// outbound trigger sets this; scheduling never does.
	IncrementAttempts bool
}

// Store is the persistence contract for call sessions.
//
// Required indexes: (user_id), (status), (user_id, call_type),
// (provider_call_id). History queries must not fall back to full
// scans; any filtered field above is backed by an index.
type Store interface {
	Insert(ctx context.Context, s CallSession) (string, error)
	GetByID(ctx context.Context, id string) (CallSession, error)
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) error

	ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallSession, error)
	ListByUserType(ctx context.Context, userID string, t CallType) ([]CallSession, error)
	ListUpcoming(ctx context.Context, userID string, now time.Time, limit int) ([]CallSession, error)
	FindByProviderCallID(ctx context.Context, providerCallID string) (CallSession, bool, error)
}
