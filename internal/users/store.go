package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("users: not found")
	ErrInvalidArgument = errors.New("users: invalid argument")
	ErrPhoneTaken      = errors.New("users: phone already registered")
)

// Store is the persistence contract for users.
//
// Required indexes: (phone) unique.
type Store interface {
	Insert(ctx context.Context, u User) (string, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByPhone(ctx context.Context, phone string) (User, bool, error)
	Update(ctx context.Context, id string, upd SettingsUpdate) error
	ListOnboarded(ctx context.Context) ([]User, error)
}
