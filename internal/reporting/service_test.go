package reporting

import (
	"context"
	"testing"
	"time"

	"coaching-platform/internal/calls"
	"coaching-platform/internal/session"
)

func TestCallsSummaryScopesByUser(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Calls = []calls.CallRecord{
		{ProviderCallID: "c1", UserID: "u1", Status: "completed", DurationSeconds: 30, StartedAt: now},
		{ProviderCallID: "c2", UserID: "u2", Status: "completed", DurationSeconds: 50, StartedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		UserID: "u1",
		Range:  TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 1 {
		t.Fatalf("expected 1 call, got %d", out.TotalCalls)
	}
	if out.AverageDurationSeconds != 30 {
		t.Fatalf("expected avg 30, got %d", out.AverageDurationSeconds)
	}
}

func TestCallsSummaryCountsStatusesAndRecordings(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Calls = []calls.CallRecord{
		{ProviderCallID: "c1", UserID: "u", Status: "completed", DurationSeconds: 60, RecordingURL: "https://r/1", StartedAt: now},
		{ProviderCallID: "c2", UserID: "u", Status: "missed", StartedAt: now},
		{ProviderCallID: "c3", UserID: "u", Status: "in-progress", StartedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		UserID: "u",
		Range:  TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.CompletedCalls != 1 || out.MissedCalls != 1 || out.InProgressCalls != 1 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.RecordedCalls != 1 {
		t.Fatalf("expected 1 recorded call, got %d", out.RecordedCalls)
	}
}

func TestAttendanceRateIgnoresPendingSessions(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Sessions = []session.CallSession{
		{ID: "s1", UserID: "u", Type: session.CallTypeDaily, Status: session.StatusCompleted, ScheduledFor: now},
		{ID: "s2", UserID: "u", Type: session.CallTypeDaily, Status: session.StatusMissed, ScheduledFor: now},
		{ID: "s3", UserID: "u", Type: session.CallTypeDaily, Status: session.StatusScheduled, ScheduledFor: now},
	}
	svc := NewService(repo)

	out, err := svc.Attendance(context.Background(), AttendanceRequest{
		UserID: "u",
		Range:  TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalSessions != 3 || out.PendingSessions != 1 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.AttendanceRate != 0.5 {
		t.Fatalf("expected rate 0.5, got %v", out.AttendanceRate)
	}
}

func TestAttendanceFiltersByCallType(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Sessions = []session.CallSession{
		{ID: "s1", UserID: "u", Type: session.CallTypeWeekly, Status: session.StatusCompleted, ScheduledFor: now},
		{ID: "s2", UserID: "u", Type: session.CallTypeDaily, Status: session.StatusCompleted, ScheduledFor: now},
	}
	svc := NewService(repo)

	out, err := svc.Attendance(context.Background(), AttendanceRequest{
		UserID:   "u",
		CallType: "weekly",
		Range:    TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalSessions != 1 {
		t.Fatalf("expected 1 session, got %d", out.TotalSessions)
	}
}

func TestSummaryRejectsInvalidRange(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	now := time.Unix(1700000000, 0).UTC()
	_, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		UserID: "u",
		Range:  TimeRange{From: now, To: now},
	})
	if err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
