package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPermissionDenied is returned when the user has refused notifications
// for this session.
var ErrPermissionDenied = errors.New("dispatch: notification permission denied")

// Notification is a scheduled or immediate local notification.
type Notification struct {
	ID     string            `json:"id"`
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
	FireAt time.Time         `json:"fire_at"`
}

// Sink receives notifications when they come due.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// Scheduler holds pending notifications and fires them when due. A zero
// FireAt means deliver immediately. Permission gating happens at Schedule
// time so a denied session never accumulates pending work.
type Scheduler struct {
	sink     Sink
	gate     *PermissionGate
	interval time.Duration

	mu      sync.Mutex
	pending map[string]Notification
	stopCh  chan struct{}
	running bool

	idGen func() string
	now   func() time.Time
}

func NewScheduler(sink Sink, gate *PermissionGate) *Scheduler {
	return &Scheduler{
		sink:     sink,
		gate:     gate,
		interval: 5 * time.Second,
		pending:  make(map[string]Notification),
		stopCh:   make(chan struct{}),
		idGen:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

func (s *Scheduler) WithIDGenerator(gen func() string) *Scheduler {
	s.idGen = gen
	return s
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Schedule queues a notification for a user. Immediate notifications are
// delivered inline; future ones wait for the scheduler loop. Returns the
// notification id.
func (s *Scheduler) Schedule(ctx context.Context, userID, title, body string, data map[string]string, fireAt time.Time) (string, error) {
	if s.gate != nil && s.gate.State() == PermissionDenied {
		return "", ErrPermissionDenied
	}

	n := Notification{
		ID:     s.idGen(),
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   data,
		FireAt: fireAt,
	}

	if fireAt.IsZero() || !fireAt.After(s.now()) {
		if err := s.sink.Deliver(ctx, n); err != nil {
			return "", fmt.Errorf("dispatch: deliver: %w", err)
		}
		return n.ID, nil
	}

	s.mu.Lock()
	s.pending[n.ID] = n
	s.mu.Unlock()
	return n.ID, nil
}

// Cancel removes a pending notification. Cancelling an unknown or already
// fired id is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// CancelAll removes every pending notification for a user.
func (s *Scheduler) CancelAll(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.pending {
		if n.UserID == userID {
			delete(s.pending, id)
		}
	}
}

// SweepBefore cancels a user's pending notifications whose generation tag is
// older than the given generation. Notifications without a generation tag
// are left alone.
func (s *Scheduler) SweepBefore(ctx context.Context, userID string, generation int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.pending {
		if n.UserID != userID {
			continue
		}
		raw, ok := n.Data["generation"]
		if !ok {
			continue
		}
		gen, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if gen < generation {
			delete(s.pending, id)
		}
	}
}

// Pending returns the user's pending notifications, for diagnostics.
func (s *Scheduler) Pending(userID string) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Notification
	for _, n := range s.pending {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// Start begins the scheduler loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.fireDue(s.now())
		}
	}
}

// fireDue delivers every pending notification whose time has come. Delivery
// failures drop the notification; reminders are recomputed on the next
// refresh pass rather than retried here.
func (s *Scheduler) fireDue(now time.Time) {
	s.mu.Lock()
	var due []Notification
	for id, n := range s.pending {
		if !n.FireAt.After(now) {
			due = append(due, n)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, n := range due {
		if err := s.sink.Deliver(context.Background(), n); err != nil {
			log.Printf("Failed to deliver notification %s for user %s: %v", n.ID, n.UserID, err)
		}
	}
}

// Stop halts the scheduler loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopCh)
		s.running = false
	}
}
