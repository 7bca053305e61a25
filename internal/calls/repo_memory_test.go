package calls

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUpsertCompletesPlaceholder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	startedAt := time.Date(2026, 1, 7, 17, 0, 0, 0, time.UTC)

	// Placeholder created at trigger time.
	first, err := store.Upsert(ctx, CallRecord{
		ProviderCallID: "call-1",
		UserID:         "u1",
		CallSessionID:  "s1",
		Status:         "in-progress",
		Direction:      DirectionOutbound,
		StartedAt:      startedAt,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Webhook completion for the same call.
	endedAt := startedAt.Add(9 * time.Minute)
	second, err := store.Upsert(ctx, CallRecord{
		ProviderCallID:  "call-1",
		UserID:          "u1",
		Status:          "completed",
		Direction:       DirectionOutbound,
		StartedAt:       startedAt,
		EndedAt:         &endedAt,
		DurationSeconds: 540,
		RecordingURL:    "https://recordings.example/call-1.wav",
		Transcript:      "hello",
		Summary:         "talked about the week",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("upsert created a duplicate row: %s vs %s", second.ID, first.ID)
	}
	if second.Status != "completed" || second.DurationSeconds != 540 {
		t.Fatalf("unexpected record: %+v", second)
	}
	// Empty incoming session id must not clobber the placeholder's link.
	if second.CallSessionID != "s1" {
		t.Fatalf("session link lost: %q", second.CallSessionID)
	}
}

func TestUpsertKeepsLargerDuration(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := CallRecord{ProviderCallID: "call-2", UserID: "u1", Status: "completed", Direction: DirectionInbound, DurationSeconds: 300}
	if _, err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rec.DurationSeconds = 0
	got, err := store.Upsert(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.DurationSeconds != 300 {
		t.Fatalf("duration clobbered: %d", got.DurationSeconds)
	}
}

func TestUpsertValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, CallRecord{UserID: "u1"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := store.Upsert(ctx, CallRecord{ProviderCallID: "call-3"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestListByUserPagination(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.Upsert(ctx, CallRecord{
			ProviderCallID: "call-" + string(rune('a'+i)),
			UserID:         "u1",
			Status:         "completed",
			Direction:      DirectionOutbound,
			StartedAt:      base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if _, err := store.Upsert(ctx, CallRecord{ProviderCallID: "other", UserID: "u2", Status: "completed", Direction: DirectionOutbound, StartedAt: base}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	page, err := store.ListByUser(ctx, "u1", 2, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("len = %d, want 2", len(page))
	}
	// Newest first, offset 1 skips the latest day.
	if !page[0].StartedAt.Equal(base.AddDate(0, 0, 3)) {
		t.Fatalf("unexpected first row: %v", page[0].StartedAt)
	}

	empty, err := store.ListByUser(ctx, "u1", 10, 99)
	if err != nil || len(empty) != 0 {
		t.Fatalf("offset past end: len=%d err=%v", len(empty), err)
	}
}
