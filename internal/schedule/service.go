package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service exposes schedule reads/writes and the next-call computation.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, userID string) (Schedule, error) {
	return s.store.GetByUser(ctx, userID)
}

// EnsureDefaults creates the default schedule for a user if none
// exists yet. Called at registration; safe to call repeatedly.
func (s *Service) EnsureDefaults(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidArgument
	}
	_, err := s.store.GetByUser(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.store.Insert(ctx, Default(userID))
	return err
}

func (s *Service) Update(ctx context.Context, userID string, upd Update) error {
	if upd.WeeklyTime != nil {
		if _, _, err := ParseClock(*upd.WeeklyTime); err != nil {
			return fmt.Errorf("%w: weekly_time: %v", ErrInvalidArgument, err)
		}
	}
	if upd.EveningTime != nil {
		if _, _, err := ParseClock(*upd.EveningTime); err != nil {
			return fmt.Errorf("%w: evening_time: %v", ErrInvalidArgument, err)
		}
	}
	if upd.RetryIntervalMinutes != nil && *upd.RetryIntervalMinutes <= 0 {
		return fmt.Errorf("%w: retry_interval_minutes must be positive", ErrInvalidArgument)
	}
	return s.store.Update(ctx, userID, upd)
}

// NextCall computes the next theoretically-due call for a user from
// their recurrence rules. ok is false when no rule is configured.
func (s *Service) NextCall(ctx context.Context, userID string) (NextCall, bool, error) {
	sched, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return NextCall{}, false, err
	}
	nc, ok := NextCallFor(sched, s.clock().UTC())
	return nc, ok, nil
}
