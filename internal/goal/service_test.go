package goal

import (
	"context"
	"testing"
	"time"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.data[key], nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte) error {
	s.data[key] = value
	return nil
}

func marchClock() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestGoalLifecycle(t *testing.T) {
	svc := NewService(newMemStore()).WithClock(marchClock)
	ctx := context.Background()

	g, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if g.TargetHours != 0 || g.DoneHours != 0 || g.Month != "2026-03" {
		t.Fatalf("expected empty goal for 2026-03, got %+v", g)
	}

	if _, err := svc.SetTarget(ctx, "user_1", 10); err != nil {
		t.Fatalf("SetTarget failed: %v", err)
	}
	if _, err := svc.AddProgress(ctx, "user_1", 3); err != nil {
		t.Fatalf("AddProgress failed: %v", err)
	}
	if _, err := svc.AddProgress(ctx, "user_1", 2); err != nil {
		t.Fatalf("AddProgress failed: %v", err)
	}

	g, err = svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if g.TargetHours != 10 || g.DoneHours != 5 {
		t.Fatalf("expected 5/10 hours, got %d/%d", g.DoneHours, g.TargetHours)
	}
}

func TestGoalResetsEachMonth(t *testing.T) {
	store := newMemStore()
	svc := NewService(store).WithClock(marchClock)
	ctx := context.Background()

	if _, err := svc.SetTarget(ctx, "user_1", 10); err != nil {
		t.Fatalf("SetTarget failed: %v", err)
	}

	svc.WithClock(func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) })
	g, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if g.TargetHours != 0 || g.Month != "2026-04" {
		t.Fatalf("April should start fresh, got %+v", g)
	}
}

func TestGoalValidation(t *testing.T) {
	svc := NewService(newMemStore()).WithClock(marchClock)
	ctx := context.Background()

	if _, err := svc.SetTarget(ctx, "user_1", 0); err == nil {
		t.Error("expected error for non-positive target")
	}
	if _, err := svc.AddProgress(ctx, "user_1", -1); err == nil {
		t.Error("expected error for negative hours")
	}
}
