package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateNormalizesType(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	when := time.Date(2026, 1, 7, 17, 0, 0, 0, time.UTC)
	id, err := svc.Create(ctx, "u1", CallType("evening-agent"), when)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Type != CallTypeDaily {
		t.Fatalf("type = %s, want %s", got.Type, CallTypeDaily)
	}
	if got.Status != StatusScheduled {
		t.Fatalf("status = %s, want %s", got.Status, StatusScheduled)
	}
	if got.AttemptsCount != 0 {
		t.Fatalf("attempts = %d, want 0", got.AttemptsCount)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if _, err := svc.Create(context.Background(), "u1", CallType("nightly"), time.Now()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	id, err := svc.Create(ctx, "u1", CallTypeWeekly, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	now := time.Date(2026, 1, 7, 17, 1, 0, 0, time.UTC)
	err = svc.Transition(ctx, id, StatusUpdate{
		Status:            StatusInProgress,
		ProviderCallID:    "call-abc",
		LastAttemptAt:     &now,
		IncrementAttempts: true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, _ := svc.Get(ctx, id)
	if got.Status != StatusInProgress || got.ProviderCallID != "call-abc" || got.AttemptsCount != 1 {
		t.Fatalf("unexpected session after trigger: %+v", got)
	}

	if err := svc.Transition(ctx, id, StatusUpdate{Status: StatusCompleted}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Terminal states are sticky.
	err = svc.Transition(ctx, id, StatusUpdate{Status: StatusInProgress})
	if !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("err = %v, want ErrTerminalStatus", err)
	}

	// Re-assert of the terminal status is a legal no-op.
	if err := svc.Transition(ctx, id, StatusUpdate{Status: StatusCompleted}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestTransitionRejectsBackwardMove(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "u1", CallTypeDaily, time.Now().UTC())
	if err := svc.Transition(ctx, id, StatusUpdate{Status: StatusInProgress}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.Transition(ctx, id, StatusUpdate{Status: StatusScheduled}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestFindByProviderCallID(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "u1", CallTypeDaily, time.Now().UTC())
	if err := svc.Transition(ctx, id, StatusUpdate{Status: StatusInProgress, ProviderCallID: "call-xyz"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, found, err := svc.FindByProviderCallID(ctx, "call-xyz")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if got.ID != id {
		t.Fatalf("id = %s, want %s", got.ID, id)
	}

	if _, found, _ := svc.FindByProviderCallID(ctx, ""); found {
		t.Fatalf("empty provider id must not match")
	}
}

func TestListUpcomingOrdersAndFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

	mk := func(at time.Time, st Status) {
		_, err := store.Insert(ctx, CallSession{UserID: "u1", Type: CallTypeDaily, ScheduledFor: at, Status: st})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	mk(now.Add(2*time.Hour), StatusScheduled)
	mk(now.Add(time.Hour), StatusScheduled)
	mk(now.Add(-time.Hour), StatusScheduled) // past
	mk(now.Add(3*time.Hour), StatusCompleted)

	got, err := store.ListUpcoming(ctx, "u1", now, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].ScheduledFor.Before(got[1].ScheduledFor) {
		t.Fatalf("not sorted soonest first: %v, %v", got[0].ScheduledFor, got[1].ScheduledFor)
	}
}
