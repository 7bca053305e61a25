package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and early development.

type MemoryStore struct {
	mu       sync.Mutex
	Sessions map[string]CallSession

	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Sessions: map[string]CallSession{}, clock: time.Now}
}

func (r *MemoryStore) Insert(ctx context.Context, s CallSession) (string, error) {
	if s.UserID == "" {
		return "", ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.clock().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.Sessions[s.ID] = s
	return s.ID, nil
}

func (r *MemoryStore) GetByID(ctx context.Context, id string) (CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Sessions[id]
	if !ok {
		return CallSession{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryStore) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = upd.Status
	if upd.ProviderCallID != "" {
		s.ProviderCallID = upd.ProviderCallID
	}
	if upd.LastAttemptAt != nil {
		s.LastAttemptAt = upd.LastAttemptAt
	}
	if upd.NextAttemptAt != nil {
		s.NextAttemptAt = upd.NextAttemptAt
	}
	if upd.IncrementAttempts {
		s.AttemptsCount++
	}
	s.UpdatedAt = r.clock().UTC()
	r.Sessions[id] = s
	return nil
}

func (r *MemoryStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallSession, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	all := r.collect(func(s CallSession) bool { return s.UserID == userID })
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduledFor.After(all[j].ScheduledFor) })
	if offset >= len(all) {
		return []CallSession{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryStore) ListByUserType(ctx context.Context, userID string, t CallType) ([]CallSession, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	out := r.collect(func(s CallSession) bool { return s.UserID == userID && s.Type == t })
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.After(out[j].ScheduledFor) })
	return out, nil
}

func (r *MemoryStore) ListUpcoming(ctx context.Context, userID string, now time.Time, limit int) ([]CallSession, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	out := r.collect(func(s CallSession) bool {
		return s.UserID == userID && s.Status == StatusScheduled && !s.ScheduledFor.Before(now)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryStore) FindByProviderCallID(ctx context.Context, providerCallID string) (CallSession, bool, error) {
	if providerCallID == "" {
		return CallSession{}, false, nil
	}
	matches := r.collect(func(s CallSession) bool { return s.ProviderCallID == providerCallID })
	if len(matches) == 0 {
		return CallSession{}, false, nil
	}
	// Deterministic pick: earliest scheduled first.
	sort.Slice(matches, func(i, j int) bool { return matches[i].ScheduledFor.Before(matches[j].ScheduledFor) })
	return matches[0], true, nil
}

func (r *MemoryStore) collect(keep func(CallSession) bool) []CallSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallSession, 0)
	for _, s := range r.Sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
