package services

import (
	"context"
	"errors"
	"testing"
)

func newTestSeedService(enabled bool) (*fakeUserRepo, *fakeEventRepo, *SeedService) {
	starter := &fakeTxStarter{}
	userRepo := newFakeUserRepo()
	eventRepo := newFakeEventRepo()
	venueRepo := newFakeVenueRepo()
	eventService := NewEventService(starter, eventRepo, venueRepo, nil)
	return userRepo, eventRepo, NewSeedService(enabled, userRepo, eventRepo, eventService)
}

func TestSeedServiceDisabled(t *testing.T) {
	_, _, svc := newTestSeedService(false)
	if _, err := svc.Seed(context.Background()); !errors.Is(err, ErrSeedingDisabled) {
		t.Fatalf("got %v, want ErrSeedingDisabled", err)
	}
}

func TestSeedService(t *testing.T) {
	ctx := context.Background()
	userRepo, eventRepo, svc := newTestSeedService(true)

	result, err := svc.Seed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.EventsAdded != 3 {
		t.Errorf("got %d events added, want 3", result.EventsAdded)
	}

	user, err := userRepo.GetByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("test user not created: %v", err)
	}
	if !user.EmailConfirmed {
		t.Error("test user must be created confirmed")
	}
	if user.ID != result.UserID {
		t.Errorf("result user %q does not match stored %q", result.UserID, user.ID)
	}

	events, err := eventRepo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	names := map[string]bool{}
	for _, e := range events {
		names[e.Name] = true
	}
	for _, want := range []string{"Morning Soccer Match", "Afternoon Basketball Game", "Evening Tennis Tournament"} {
		if !names[want] {
			t.Errorf("missing seeded event %q", want)
		}
	}

	t.Run("reseeding is idempotent", func(t *testing.T) {
		if _, err := svc.Seed(ctx); err != nil {
			t.Fatal(err)
		}
		events, err := eventRepo.ListByUser(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 3 {
			t.Errorf("got %d events after reseed, want 3", len(events))
		}
	})
}
