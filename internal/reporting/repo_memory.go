package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"coaching-platform/internal/calls"
	"coaching-platform/internal/session"
)

// MemoryRepo is a simple in-memory reporting repository for tests and
// early development. It enforces user scoping on reads.
type MemoryRepo struct {
	mu sync.Mutex

	Calls    []calls.CallRecord
	Sessions []session.CallSession
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCallRecords(ctx context.Context, userID string, from, to time.Time) ([]calls.CallRecord, error) {
	if userID == "" {
		return nil, errors.New("user_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calls.CallRecord, 0)
	for _, c := range r.Calls {
		if c.UserID != userID {
			continue
		}
		if !c.StartedAt.IsZero() {
			if c.StartedAt.Before(from) || !c.StartedAt.Before(to) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ListSessions(ctx context.Context, userID string, from, to time.Time) ([]session.CallSession, error) {
	if userID == "" {
		return nil, errors.New("user_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.CallSession, 0)
	for _, s := range r.Sessions {
		if s.UserID != userID {
			continue
		}
		if !s.ScheduledFor.IsZero() {
			if s.ScheduledFor.Before(from) || !s.ScheduledFor.Before(to) {
				continue
			}
		}
		out = append(out, s)
	}
	return out, nil
}
