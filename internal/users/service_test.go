package users

import (
	"context"
	"errors"
	"testing"
)

type fakeProvisioner struct {
	calls []string
	err   error
}

func (p *fakeProvisioner) EnsureDefaults(ctx context.Context, userID string) error {
	p.calls = append(p.calls, userID)
	return p.err
}

func TestRegisterProvisionsSchedule(t *testing.T) {
	prov := &fakeProvisioner{}
	svc := NewService(NewMemoryStore(), prov)

	u, err := svc.Register(context.Background(), "+15551234567", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("user id not assigned")
	}
	if u.Timezone != "UTC" {
		t.Fatalf("timezone = %q, want UTC default", u.Timezone)
	}
	if len(prov.calls) != 1 || prov.calls[0] != u.ID {
		t.Fatalf("provisioner calls = %v", prov.calls)
	}
}

func TestRegisterRejectsBadPhone(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeProvisioner{})
	for _, phone := range []string{"", "15551234567", "+1", "  "} {
		if _, err := svc.Register(context.Background(), phone, "UTC"); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("phone %q: err = %v, want ErrInvalidArgument", phone, err)
		}
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeProvisioner{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "+15551234567", "UTC"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.Register(ctx, "+15551234567", "UTC"); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("err = %v, want ErrPhoneTaken", err)
	}
}

func TestRegisterProvisioningFailure(t *testing.T) {
	prov := &fakeProvisioner{err: errors.New("schedule store down")}
	svc := NewService(NewMemoryStore(), prov)

	if _, err := svc.Register(context.Background(), "+15551234567", "UTC"); err == nil {
		t.Fatalf("expected provisioning error to surface")
	}
}

func TestMarkOnboardedAndList(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	a, err := svc.Register(ctx, "+15551111111", "UTC")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.Register(ctx, "+15552222222", "UTC"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if err := svc.MarkOnboarded(ctx, a.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	onboarded, err := svc.ListOnboarded(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(onboarded) != 1 || onboarded[0].ID != a.ID {
		t.Fatalf("onboarded = %+v", onboarded)
	}
}

func TestFindByPhone(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "+15553334444", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, found, err := svc.FindByPhone(ctx, "+15553334444")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if got.ID != u.ID {
		t.Fatalf("id = %s, want %s", got.ID, u.ID)
	}

	if _, found, _ := svc.FindByPhone(ctx, "+19990000000"); found {
		t.Fatalf("unknown phone should not match")
	}
}
