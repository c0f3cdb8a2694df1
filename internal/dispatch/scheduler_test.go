package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []Notification
}

func (s *recordingSink) Deliver(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, n)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func testClock() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestScheduleImmediateDeliversInline(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(sink, nil).WithClock(testClock)

	id, err := s.Schedule(context.Background(), "user_1", "Hola", "cuerpo", nil, time.Time{})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected an id")
	}
	if sink.count() != 1 {
		t.Fatalf("expected inline delivery, got %d", sink.count())
	}
	if len(s.Pending("user_1")) != 0 {
		t.Error("immediate notification should not stay pending")
	}
}

func TestScheduleFutureStaysPending(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(sink, nil).WithClock(testClock)

	fireAt := testClock().Add(time.Hour)
	id, err := s.Schedule(context.Background(), "user_1", "Recordatorio", "cuerpo", nil, fireAt)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if sink.count() != 0 {
		t.Fatal("future notification should not deliver inline")
	}
	if len(s.Pending("user_1")) != 1 {
		t.Fatal("expected one pending notification")
	}

	s.Cancel(context.Background(), id)
	if len(s.Pending("user_1")) != 0 {
		t.Error("cancel should remove the pending notification")
	}
	// Cancelling again is a no-op.
	s.Cancel(context.Background(), id)
}

func TestFireDueDeliversAndDrains(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(sink, nil).WithClock(testClock)

	if _, err := s.Schedule(context.Background(), "user_1", "a", "b", nil, testClock().Add(time.Minute)); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if _, err := s.Schedule(context.Background(), "user_1", "c", "d", nil, testClock().Add(time.Hour)); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	s.fireDue(testClock().Add(5 * time.Minute))

	if sink.count() != 1 {
		t.Fatalf("expected exactly one delivery, got %d", sink.count())
	}
	if len(s.Pending("user_1")) != 1 {
		t.Fatalf("expected one notification still pending, got %d", len(s.Pending("user_1")))
	}
}

func TestSweepBeforeHonorsGeneration(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(sink, nil).WithClock(testClock)

	fireAt := testClock().Add(time.Hour)
	ctx := context.Background()
	if _, err := s.Schedule(ctx, "user_1", "old", "", map[string]string{"generation": "1"}, fireAt); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if _, err := s.Schedule(ctx, "user_1", "new", "", map[string]string{"generation": "2"}, fireAt); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if _, err := s.Schedule(ctx, "user_2", "other", "", map[string]string{"generation": "1"}, fireAt); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	s.SweepBefore(ctx, "user_1", 2)

	pending := s.Pending("user_1")
	if len(pending) != 1 || pending[0].Title != "new" {
		t.Fatalf("expected only generation 2 to survive, got %+v", pending)
	}
	if len(s.Pending("user_2")) != 1 {
		t.Error("sweep must not touch other users")
	}
}

func TestScheduleBlockedWhenPermissionDenied(t *testing.T) {
	gate := NewPermissionGate()
	gate.Resolve(false)
	s := NewScheduler(&recordingSink{}, gate).WithClock(testClock)

	if _, err := s.Schedule(context.Background(), "user_1", "a", "b", nil, time.Time{}); err != ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}
