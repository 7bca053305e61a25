package coaching

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local runs.
type MemoryStore struct {
	mu sync.RWMutex

	visions     map[string]VisionProfile   // keyed by user id
	weeklies    map[string]WeeklyObjective // keyed by user id + "|" + week start
	dailies     map[string]DailyPlan       // keyed by user id + "|" + date
	commitments []CommitmentLog
	summaries   map[string]CallSummary // keyed by summary id

	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visions:   make(map[string]VisionProfile),
		weeklies:  make(map[string]WeeklyObjective),
		dailies:   make(map[string]DailyPlan),
		summaries: make(map[string]CallSummary),
		clock:     time.Now,
	}
}

// WithClock overrides the timestamp source. Test hook.
func (r *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	r.clock = clock
	return r
}

func (r *MemoryStore) UpsertVision(_ context.Context, v VisionProfile) (VisionProfile, error) {
	if v.UserID == "" {
		return VisionProfile{}, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	if prev, ok := r.visions[v.UserID]; ok {
		v.ID = prev.ID
		v.CreatedAt = prev.CreatedAt
	} else {
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	r.visions[v.UserID] = v
	return v, nil
}

func (r *MemoryStore) GetVision(_ context.Context, userID string) (VisionProfile, error) {
	if userID == "" {
		return VisionProfile{}, ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.visions[userID]
	if !ok {
		return VisionProfile{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryStore) UpsertWeekly(_ context.Context, o WeeklyObjective) (WeeklyObjective, error) {
	if o.UserID == "" || o.WeekStartDate == "" {
		return WeeklyObjective{}, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := o.UserID + "|" + o.WeekStartDate
	now := r.clock().UTC()
	if prev, ok := r.weeklies[key]; ok {
		o.ID = prev.ID
		o.CreatedAt = prev.CreatedAt
	} else {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	r.weeklies[key] = o
	return o, nil
}

func (r *MemoryStore) GetWeekly(_ context.Context, userID, weekStartDate string) (WeeklyObjective, error) {
	if userID == "" || weekStartDate == "" {
		return WeeklyObjective{}, ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.weeklies[userID+"|"+weekStartDate]
	if !ok {
		return WeeklyObjective{}, ErrNotFound
	}
	return o, nil
}

func (r *MemoryStore) ListWeekly(_ context.Context, userID string, limit int) ([]WeeklyObjective, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 10
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WeeklyObjective, 0)
	for _, o := range r.weeklies {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStartDate > out[j].WeekStartDate })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryStore) UpsertDaily(_ context.Context, p DailyPlan) (DailyPlan, error) {
	if p.UserID == "" || p.Date == "" {
		return DailyPlan{}, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.UserID + "|" + p.Date
	now := r.clock().UTC()
	if prev, ok := r.dailies[key]; ok {
		p.ID = prev.ID
		p.CreatedAt = prev.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.dailies[key] = p
	return p, nil
}

func (r *MemoryStore) GetDaily(_ context.Context, userID, date string) (DailyPlan, error) {
	if userID == "" || date == "" {
		return DailyPlan{}, ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.dailies[userID+"|"+date]
	if !ok {
		return DailyPlan{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryStore) GetDailyByID(_ context.Context, id string) (DailyPlan, error) {
	if id == "" {
		return DailyPlan{}, ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.dailies {
		if p.ID == id {
			return p, nil
		}
	}
	return DailyPlan{}, ErrNotFound
}

func (r *MemoryStore) ListDailyRange(_ context.Context, userID, startDate, endDate string) ([]DailyPlan, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DailyPlan, 0)
	for _, p := range r.dailies {
		if p.UserID != userID {
			continue
		}
		if startDate != "" && p.Date < startDate {
			continue
		}
		if endDate != "" && p.Date > endDate {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *MemoryStore) AppendCommitment(_ context.Context, c CommitmentLog) (string, error) {
	if c.UserID == "" || c.Date == "" || c.Type == "" {
		return "", ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.clock().UTC()
	r.commitments = append(r.commitments, c)
	return c.ID, nil
}

func (r *MemoryStore) ListCommitments(_ context.Context, userID string, limit int) ([]CommitmentLog, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 30
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CommitmentLog, 0)
	for _, c := range r.commitments {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryStore) InsertSummary(_ context.Context, s CallSummary) (string, error) {
	if s.UserID == "" {
		return "", ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.UserEditsText = ""
	s.Locked = false
	s.CreatedAt = r.clock().UTC()
	r.summaries[s.ID] = s
	return s.ID, nil
}

func (r *MemoryStore) GetSummary(_ context.Context, id string) (CallSummary, error) {
	if id == "" {
		return CallSummary{}, ErrInvalidArgument
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[id]
	if !ok {
		return CallSummary{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryStore) GetSummaryBySession(_ context.Context, sessionID string) (CallSummary, bool, error) {
	if sessionID == "" {
		return CallSummary{}, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best CallSummary
	found := false
	for _, s := range r.summaries {
		if s.CallSessionID != sessionID {
			continue
		}
		if !found || s.Timestamp.After(best.Timestamp) {
			best = s
			found = true
		}
	}
	return best, found, nil
}

func (r *MemoryStore) ListSummaries(_ context.Context, userID string, limit int) ([]CallSummary, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CallSummary, 0)
	for _, s := range r.summaries {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryStore) UpdateSummaryEdits(_ context.Context, id, userEditsText string, lock bool) error {
	if id == "" {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.summaries[id]
	if !ok {
		return ErrNotFound
	}
	if s.Locked {
		return ErrSummaryLocked
	}
	s.UserEditsText = userEditsText
	s.Locked = lock
	r.summaries[id] = s
	return nil
}
