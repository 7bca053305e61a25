package calls

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("calls: not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// Store persists call records.
//
// Upsert keys on provider_call_id. Empty incoming fields must not
// clobber previously stored values (a placeholder row created at
// trigger time already carries started_at and direction; the webhook
// completes it).
//
// Required indexes: (provider_call_id) unique, (user_id).
type Store interface {
	Upsert(ctx context.Context, rec CallRecord) (CallRecord, error)
	GetByID(ctx context.Context, id string) (CallRecord, error)
	GetByProviderCallID(ctx context.Context, providerCallID string) (CallRecord, bool, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallRecord, error)
}
