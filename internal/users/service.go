package users

import (
	"context"
	"fmt"
	"strings"
)

// ScheduleProvisioner creates a default call schedule for a new user.
// Implemented by schedule.Service; kept as an interface here to avoid
// a package cycle.
type ScheduleProvisioner interface {
	EnsureDefaults(ctx context.Context, userID string) error
}

type Service struct {
	store     Store
	schedules ScheduleProvisioner
}

func NewService(store Store, schedules ScheduleProvisioner) *Service {
	return &Service{store: store, schedules: schedules}
}

// Register creates a user and their default call schedule. Phone
// numbers should be E.164; a light sanity check rejects the obviously
// broken rather than attempting full validation.
func (s *Service) Register(ctx context.Context, phone, timezone string) (User, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 7 || !strings.HasPrefix(phone, "+") {
		return User{}, fmt.Errorf("%w: phone must be E.164", ErrInvalidArgument)
	}
	if strings.TrimSpace(timezone) == "" {
		timezone = "UTC"
	}

	id, err := s.store.Insert(ctx, User{Phone: phone, Timezone: timezone})
	if err != nil {
		return User{}, err
	}
	if s.schedules != nil {
		if err := s.schedules.EnsureDefaults(ctx, id); err != nil {
			return User{}, fmt.Errorf("users: provisioning default schedule: %w", err)
		}
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (User, bool, error) {
	return s.store.GetByPhone(ctx, phone)
}

func (s *Service) UpdateSettings(ctx context.Context, id string, upd SettingsUpdate) error {
	return s.store.Update(ctx, id, upd)
}

// MarkOnboarded flips the onboarded flag after a completed onboarding
// call; the scheduler only considers onboarded users.
func (s *Service) MarkOnboarded(ctx context.Context, id string) error {
	t := true
	return s.store.Update(ctx, id, SettingsUpdate{Onboarded: &t})
}

func (s *Service) ListOnboarded(ctx context.Context) ([]User, error) {
	return s.store.ListOnboarded(ctx)
}
