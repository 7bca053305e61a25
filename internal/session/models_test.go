package session

import "testing"

func TestNormalizeCallType(t *testing.T) {
	cases := []struct {
		in   string
		want CallType
		ok   bool
	}{
		{"onboarding", CallTypeOnboarding, true},
		{"weekly", CallTypeWeekly, true},
		{"daily", CallTypeDaily, true},
		{"evening", CallTypeDaily, true},
		{"evening-agent", CallTypeDaily, true},
		{"weekly-agent", CallTypeWeekly, true},
		{"onboarding-agent", CallTypeOnboarding, true},
		{"  Weekly ", CallTypeWeekly, true},
		{"DAILY", CallTypeDaily, true},
		{"", "", false},
		{"nightly", "", false},
		{"agent", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeCallType(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizeCallType(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for s, terminal := range map[Status]bool{
		StatusScheduled:  false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusMissed:     true,
		StatusFailed:     true,
	} {
		if s.IsTerminal() != terminal {
			t.Fatalf("%s.IsTerminal() = %v", s, !terminal)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusScheduled, StatusInProgress},
		{StatusScheduled, StatusCompleted},
		{StatusScheduled, StatusMissed},
		{StatusScheduled, StatusFailed},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusMissed},
		{StatusInProgress, StatusFailed},
	}
	for _, c := range allowed {
		if !c.from.CanTransition(c.to) {
			t.Fatalf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusInProgress, StatusScheduled},
		{StatusCompleted, StatusInProgress},
		{StatusCompleted, StatusMissed},
		{StatusMissed, StatusCompleted},
		{StatusFailed, StatusScheduled},
	}
	for _, c := range denied {
		if c.from.CanTransition(c.to) {
			t.Fatalf("%s -> %s should be rejected", c.from, c.to)
		}
	}

	// Re-asserting the current status is always a no-op, terminals included.
	for _, s := range []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusMissed, StatusFailed} {
		if !s.CanTransition(s) {
			t.Fatalf("%s -> %s should be allowed", s, s)
		}
	}
}
