package schedule

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("schedule: not found")
	ErrInvalidArgument = errors.New("schedule: invalid argument")
)

// Store persists one schedule row per user.
//
// Required indexes: (user_id) unique.
type Store interface {
	GetByUser(ctx context.Context, userID string) (Schedule, error)
	Insert(ctx context.Context, s Schedule) (string, error)
	Update(ctx context.Context, userID string, upd Update) error
}
