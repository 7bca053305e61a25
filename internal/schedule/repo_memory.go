package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and early development.

type MemoryStore struct {
	mu        sync.Mutex
	Schedules map[string]Schedule // keyed by user id

	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Schedules: map[string]Schedule{}, clock: time.Now}
}

func (r *MemoryStore) GetByUser(ctx context.Context, userID string) (Schedule, error) {
	if userID == "" {
		return Schedule{}, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Schedules[userID]
	if !ok {
		return Schedule{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryStore) Insert(ctx context.Context, s Schedule) (string, error) {
	if s.UserID == "" {
		return "", ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.Schedules[s.UserID]; ok {
		return existing.ID, nil
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.clock().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.Schedules[s.UserID] = s
	return s.ID, nil
}

func (r *MemoryStore) Update(ctx context.Context, userID string, upd Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Schedules[userID]
	if !ok {
		return ErrNotFound
	}
	if upd.OnboardingTime != nil {
		s.OnboardingTime = *upd.OnboardingTime
	}
	if upd.WeeklyDay != nil {
		s.WeeklyDay = *upd.WeeklyDay
	}
	if upd.WeeklyTime != nil {
		s.WeeklyTime = *upd.WeeklyTime
	}
	if upd.EveningDays != nil {
		s.EveningDays = append([]time.Weekday(nil), (*upd.EveningDays)...)
	}
	if upd.EveningTime != nil {
		s.EveningTime = *upd.EveningTime
	}
	if upd.IncludeSaturday != nil {
		s.IncludeSaturday = *upd.IncludeSaturday
	}
	if upd.IncludeSundayRecap != nil {
		s.IncludeSundayRecap = *upd.IncludeSundayRecap
	}
	if upd.RetryIntervalMinutes != nil {
		s.RetryIntervalMinutes = *upd.RetryIntervalMinutes
	}
	s.UpdatedAt = r.clock().UTC()
	r.Schedules[userID] = s
	return nil
}
