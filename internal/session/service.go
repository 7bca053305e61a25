package session

import (
	"context"
	"fmt"
	"time"
)

// Service wraps a Store with the status state machine and call-type
// normalization so callers cannot write illegal transitions or legacy
// aliases.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// Create inserts a new session in status scheduled with zero attempts.
func (s *Service) Create(ctx context.Context, userID string, t CallType, scheduledFor time.Time) (string, error) {
	if userID == "" {
		return "", ErrInvalidArgument
	}
	norm, ok := NormalizeCallType(string(t))
	if !ok {
		return "", fmt.Errorf("%w: unknown call type %q", ErrInvalidArgument, t)
	}
	return s.store.Insert(ctx, CallSession{
		UserID:       userID,
		Type:         norm,
		ScheduledFor: scheduledFor.UTC(),
		Status:       StatusScheduled,
	})
}

// Transition patches status and associated fields, refusing to move a
// session out of a terminal state. Re-asserting the current status is
// allowed so webhook redeliveries stay idempotent.
func (s *Service) Transition(ctx context.Context, id string, upd StatusUpdate) error {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !cur.Status.CanTransition(upd.Status) {
		if cur.Status.IsTerminal() {
			return fmt.Errorf("%w: %s -> %s", ErrTerminalStatus, cur.Status, upd.Status)
		}
		return fmt.Errorf("%w: illegal transition %s -> %s", ErrInvalidArgument, cur.Status, upd.Status)
	}
	return s.store.UpdateStatus(ctx, id, upd)
}

func (s *Service) Get(ctx context.Context, id string) (CallSession, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]CallSession, error) {
	return s.store.ListByUser(ctx, userID, limit, offset)
}

// Upcoming returns the next scheduled sessions at or after now, soonest first.
func (s *Service) Upcoming(ctx context.Context, userID string, limit int) ([]CallSession, error) {
	return s.store.ListUpcoming(ctx, userID, s.clock().UTC(), limit)
}

func (s *Service) FindByProviderCallID(ctx context.Context, providerCallID string) (CallSession, bool, error) {
	return s.store.FindByProviderCallID(ctx, providerCallID)
}
