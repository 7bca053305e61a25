package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and early development.

type MemoryStore struct {
	mu    sync.Mutex
	Users map[string]User

	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Users: map[string]User{}, clock: time.Now}
}

func (r *MemoryStore) Insert(ctx context.Context, u User) (string, error) {
	if u.Phone == "" {
		return "", ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Phone == u.Phone {
			return "", ErrPhoneTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CoachingTone == "" {
		u.CoachingTone = "supportive"
	}
	now := r.clock().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.Users[u.ID] = u
	return u.ID, nil
}

func (r *MemoryStore) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryStore) GetByPhone(ctx context.Context, phone string) (User, bool, error) {
	if phone == "" {
		return User{}, false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Phone == phone {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *MemoryStore) Update(ctx context.Context, id string, upd SettingsUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Timezone != nil {
		u.Timezone = *upd.Timezone
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.CoachingTone != nil {
		u.CoachingTone = *upd.CoachingTone
	}
	if upd.SMSEnabled != nil {
		u.SMSEnabled = *upd.SMSEnabled
	}
	if upd.PushEnabled != nil {
		u.PushEnabled = *upd.PushEnabled
	}
	if upd.Onboarded != nil {
		u.Onboarded = *upd.Onboarded
	}
	u.UpdatedAt = r.clock().UTC()
	r.Users[id] = u
	return nil
}

func (r *MemoryStore) ListOnboarded(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0)
	for _, u := range r.Users {
		if u.Onboarded {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
