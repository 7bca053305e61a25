package calls

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and early development.
// It mirrors the Postgres upsert semantics: existing values survive
// empty incoming fields.

type MemoryStore struct {
	mu      sync.Mutex
	Records map[string]CallRecord // keyed by provider_call_id

	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Records: map[string]CallRecord{}, clock: time.Now}
}

func (r *MemoryStore) Upsert(ctx context.Context, rec CallRecord) (CallRecord, error) {
	if rec.ProviderCallID == "" || rec.UserID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	existing, ok := r.Records[rec.ProviderCallID]
	if !ok {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		r.Records[rec.ProviderCallID] = rec
		return rec, nil
	}

	existing.Status = rec.Status
	existing.Direction = rec.Direction
	if rec.CallSessionID != "" {
		existing.CallSessionID = rec.CallSessionID
	}
	if rec.EndedAt != nil {
		existing.EndedAt = rec.EndedAt
	}
	if rec.DurationSeconds > existing.DurationSeconds {
		existing.DurationSeconds = rec.DurationSeconds
	}
	if rec.RecordingURL != "" {
		existing.RecordingURL = rec.RecordingURL
	}
	if rec.Transcript != "" {
		existing.Transcript = rec.Transcript
	}
	if rec.Summary != "" {
		existing.Summary = rec.Summary
	}
	existing.UpdatedAt = now
	r.Records[rec.ProviderCallID] = existing
	return existing, nil
}

func (r *MemoryStore) GetByID(ctx context.Context, id string) (CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Records {
		if c.ID == id {
			return c, nil
		}
	}
	return CallRecord{}, ErrNotFound
}

func (r *MemoryStore) GetByProviderCallID(ctx context.Context, providerCallID string) (CallRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Records[providerCallID]
	return c, ok, nil
}

func (r *MemoryStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallRecord, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, 0)
	for _, c := range r.Records {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if offset >= len(out) {
		return []CallRecord{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
