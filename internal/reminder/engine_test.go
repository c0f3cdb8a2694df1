package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voluntapp/voluntapp/internal/notify"
	"github.com/voluntapp/voluntapp/internal/opportunity"
	"github.com/voluntapp/voluntapp/internal/postulation"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

type dispatched struct {
	id     string
	userID string
	title  string
	body   string
	data   map[string]string
	fireAt time.Time
}

type fakeDispatcher struct {
	mu        sync.Mutex
	seq       int
	immediate []dispatched
	pending   map[string]dispatched
	failNext  error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{pending: map[string]dispatched{}}
}

func (d *fakeDispatcher) Schedule(ctx context.Context, userID, title, body string, data map[string]string, fireAt time.Time) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return "", err
	}
	d.seq++
	n := dispatched{
		id:     fmt.Sprintf("n_%d", d.seq),
		userID: userID,
		title:  title,
		body:   body,
		data:   data,
		fireAt: fireAt,
	}
	if fireAt.IsZero() {
		d.immediate = append(d.immediate, n)
	} else {
		d.pending[n.id] = n
	}
	return n.id, nil
}

func (d *fakeDispatcher) Cancel(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, id)
}

func (d *fakeDispatcher) SweepBefore(ctx context.Context, userID string, generation int64) {}

func (d *fakeDispatcher) immediateCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.immediate)
}

func (d *fakeDispatcher) pendingForUser(userID string) []dispatched {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []dispatched
	for _, n := range d.pending {
		if n.userID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakePosts struct {
	posts []postulation.Postulation
}

func (f *fakePosts) ListActiveByUser(ctx context.Context, userID string) ([]postulation.Postulation, error) {
	return f.posts, nil
}

type fakeOpps struct {
	opps []opportunity.Opportunity
}

func (f *fakeOpps) GetByIDs(ctx context.Context, ids []string) ([]opportunity.Opportunity, error) {
	return f.opps, nil
}

var engineNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(dispatcher *fakeDispatcher, posts *fakePosts, opps *fakeOpps) (*Engine, *memStore) {
	store := newMemStore()
	e := NewEngine("user_1", store, dispatcher, posts, opps, nil).
		WithClock(func() time.Time { return engineNow }).
		WithLocation(time.UTC)
	return e, store
}

func modifiedEvent(id, status string) postulation.ChangeEvent {
	return postulation.ChangeEvent{
		Type: postulation.ChangeModified,
		Record: postulation.Postulation{
			ID:            id,
			UserID:        "user_1",
			OpportunityID: "opp_1",
			Status:        postulation.Status(status),
		},
	}
}

func TestStatusTransitionDispatchesOnce(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	// First observation establishes the baseline, no notification.
	e.handlePostulationChange(modifiedEvent("post_1", "submitted"))
	if dispatcher.immediateCount() != 0 {
		t.Fatalf("first observation must not notify, got %d", dispatcher.immediateCount())
	}

	// Transition fires exactly one notification.
	e.handlePostulationChange(modifiedEvent("post_1", "accepted"))
	if dispatcher.immediateCount() != 1 {
		t.Fatalf("expected 1 notification after transition, got %d", dispatcher.immediateCount())
	}

	n := dispatcher.immediate[0]
	if !strings.Contains(n.title, "aceptada") {
		t.Errorf("accepted title should be congratulatory, got %q", n.title)
	}
	if !strings.Contains(n.body, "Felicitaciones") {
		t.Errorf("accepted body should congratulate, got %q", n.body)
	}
	if n.data["type"] != notify.TypePostulacionStatus {
		t.Errorf("expected payload type %s, got %s", notify.TypePostulacionStatus, n.data["type"])
	}
	if n.data["status"] != "accepted" || n.data["postulacionId"] != "post_1" {
		t.Errorf("unexpected payload: %+v", n.data)
	}

	// Same status again: no-change means no-dispatch.
	e.handlePostulationChange(modifiedEvent("post_1", "accepted"))
	if dispatcher.immediateCount() != 1 {
		t.Fatalf("repeated status must not re-notify, got %d", dispatcher.immediateCount())
	}
}

func TestStatusTransitionSurvivesRestart(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, store := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	e.handlePostulationChange(modifiedEvent("post_1", "submitted"))

	// A fresh engine over the same store sees the persisted baseline.
	e2 := NewEngine("user_1", store, dispatcher, &fakePosts{}, &fakeOpps{}, nil).
		WithClock(func() time.Time { return engineNow }).
		WithLocation(time.UTC)
	e2.handlePostulationChange(modifiedEvent("post_1", "accepted"))

	if dispatcher.immediateCount() != 1 {
		t.Fatalf("expected transition detected across restart, got %d notifications", dispatcher.immediateCount())
	}
}

func TestUnknownStatusIsSilentlyIgnored(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	e.handlePostulationChange(modifiedEvent("post_1", "submitted"))
	e.handlePostulationChange(modifiedEvent("post_1", "under_review"))
	if dispatcher.immediateCount() != 0 {
		t.Fatalf("under_review has no copy, expected silence, got %d", dispatcher.immediateCount())
	}

	// The baseline still advanced: a later accepted transition notifies.
	e.handlePostulationChange(modifiedEvent("post_1", "accepted"))
	if dispatcher.immediateCount() != 1 {
		t.Fatalf("expected 1 notification, got %d", dispatcher.immediateCount())
	}
}

func addedOpportunity(id, title, category string) opportunity.ChangeEvent {
	return opportunity.ChangeEvent{
		Type: opportunity.ChangeAdded,
		Record: opportunity.Opportunity{
			ID:       id,
			Title:    title,
			Category: category,
			Status:   opportunity.StatusOpen,
		},
	}
}

func TestNewOpportunityNotifiesOncePerID(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	ev := addedOpportunity("opp_1", "Campaña de vacunación", "salud")
	e.handleOpportunityAdded(ev)
	e.handleOpportunityAdded(ev)
	e.handleOpportunityAdded(ev)

	if dispatcher.immediateCount() != 1 {
		t.Fatalf("replayed added events must notify once, got %d", dispatcher.immediateCount())
	}

	n := dispatcher.immediate[0]
	if !strings.Contains(n.body, "Campaña de vacunación") || !strings.Contains(n.body, "salud") {
		t.Errorf("body should mention title and category, got %q", n.body)
	}
	if n.data["type"] != notify.TypeNuevaOportunidad || n.data["opportunityId"] != "opp_1" {
		t.Errorf("unexpected payload: %+v", n.data)
	}
}

func TestNewOpportunityDispatchFailureAllowsRetry(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	dispatcher.failNext = errors.New("dispatcher down")
	e.handleOpportunityAdded(addedOpportunity("opp_1", "Huerta comunitaria", "ambiente"))
	if dispatcher.immediateCount() != 0 {
		t.Fatal("failed dispatch should not deliver")
	}

	// The id was not marked notified, so a replay succeeds.
	e.handleOpportunityAdded(addedOpportunity("opp_1", "Huerta comunitaria", "ambiente"))
	if dispatcher.immediateCount() != 1 {
		t.Fatalf("expected retry to deliver, got %d", dispatcher.immediateCount())
	}
}

func TestNotifiedSetEvictsOldestBeyondCap(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	for i := 0; i < notifiedCap+1; i++ {
		e.handleOpportunityAdded(addedOpportunity(fmt.Sprintf("opp_%d", i), "t", "c"))
	}
	if dispatcher.immediateCount() != notifiedCap+1 {
		t.Fatalf("expected %d notifications, got %d", notifiedCap+1, dispatcher.immediateCount())
	}

	// opp_0 was evicted, so it notifies again.
	e.handleOpportunityAdded(addedOpportunity("opp_0", "t", "c"))
	if dispatcher.immediateCount() != notifiedCap+2 {
		t.Fatalf("evicted id should re-notify, got %d", dispatcher.immediateCount())
	}

	// opp_1 is still in the set.
	e.handleOpportunityAdded(addedOpportunity("opp_1", "t", "c"))
	if dispatcher.immediateCount() != notifiedCap+2 {
		t.Fatalf("retained id must not re-notify, got %d", dispatcher.immediateCount())
	}
}

func TestClosedOpportunityIsIgnored(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	ev := addedOpportunity("opp_1", "t", "c")
	ev.Record.Status = opportunity.StatusClosed
	e.handleOpportunityAdded(ev)

	if dispatcher.immediateCount() != 0 {
		t.Fatalf("non-open opportunities must not notify, got %d", dispatcher.immediateCount())
	}
}

func futureOpportunity(id string, deadline, start *time.Time) opportunity.Opportunity {
	return opportunity.Opportunity{
		ID:             id,
		Title:          "Apoyo escolar",
		Status:         opportunity.StatusOpen,
		EnrollDeadline: deadline,
		StartsAt:       start,
	}
}

func activePost(id, oppID string) postulation.Postulation {
	return postulation.Postulation{
		ID:            id,
		UserID:        "user_1",
		OpportunityID: oppID,
		Status:        postulation.StatusSubmitted,
	}
}

func TestScheduleAllCreatesReminderPair(t *testing.T) {
	deadline := engineNow.Add(72 * time.Hour)
	start := engineNow.Add(120 * time.Hour)
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher,
		&fakePosts{posts: []postulation.Postulation{activePost("post_1", "opp_1")}},
		&fakeOpps{opps: []opportunity.Opportunity{futureOpportunity("opp_1", &deadline, &start)}},
	)

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("RefreshReminders failed: %v", err)
	}

	pending := dispatcher.pendingForUser("user_1")
	if len(pending) != 2 {
		t.Fatalf("expected deadline + start reminders, got %d", len(pending))
	}
	for _, n := range pending {
		if n.data["type"] != notify.TypeRecordatorio {
			t.Errorf("expected payload type %s, got %s", notify.TypeRecordatorio, n.data["type"])
		}
		if n.data["generation"] == "" {
			t.Error("reminders must carry a generation tag")
		}
		if !n.fireAt.After(engineNow) {
			t.Errorf("fire time must be in the future, got %v", n.fireAt)
		}
	}
}

func TestDeadlineTwoDaysOutFiresTomorrowAtNine(t *testing.T) {
	deadline := engineNow.Add(48 * time.Hour) // March 12 12:00
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher,
		&fakePosts{posts: []postulation.Postulation{activePost("post_1", "opp_1")}},
		&fakeOpps{opps: []opportunity.Opportunity{futureOpportunity("opp_1", &deadline, nil)}},
	)

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("RefreshReminders failed: %v", err)
	}

	pending := dispatcher.pendingForUser("user_1")
	if len(pending) != 1 {
		t.Fatalf("expected only the deadline reminder, got %d", len(pending))
	}
	want := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	if !pending[0].fireAt.Equal(want) {
		t.Errorf("expected fire at %v, got %v", want, pending[0].fireAt)
	}
}

func TestPastFireTimesAreSkipped(t *testing.T) {
	// Deadline is tomorrow morning: 09:00 the day before is already past.
	deadline := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	// Start is today: 08:00 today is already past (now is 12:00).
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher,
		&fakePosts{posts: []postulation.Postulation{activePost("post_1", "opp_1")}},
		&fakeOpps{opps: []opportunity.Opportunity{futureOpportunity("opp_1", &deadline, &start)}},
	)

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("RefreshReminders failed: %v", err)
	}
	if len(dispatcher.pendingForUser("user_1")) != 0 {
		t.Fatalf("past fire times must never be scheduled, got %d", len(dispatcher.pendingForUser("user_1")))
	}
}

func TestMissingTimestampsAreSkippedNotErrors(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher,
		&fakePosts{posts: []postulation.Postulation{activePost("post_1", "opp_1")}},
		&fakeOpps{opps: []opportunity.Opportunity{futureOpportunity("opp_1", nil, nil)}},
	)

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("RefreshReminders failed: %v", err)
	}
	if len(dispatcher.pendingForUser("user_1")) != 0 {
		t.Fatal("no timestamps means no reminders")
	}
}

func TestRefreshIsIdempotentInCardinality(t *testing.T) {
	deadline := engineNow.Add(72 * time.Hour)
	start := engineNow.Add(120 * time.Hour)
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher,
		&fakePosts{posts: []postulation.Postulation{activePost("post_1", "opp_1")}},
		&fakeOpps{opps: []opportunity.Opportunity{futureOpportunity("opp_1", &deadline, &start)}},
	)

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	first := len(dispatcher.pendingForUser("user_1"))

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
	second := len(dispatcher.pendingForUser("user_1"))

	if first != second {
		t.Fatalf("refresh must be idempotent in cardinality: %d then %d", first, second)
	}
	if second != 2 {
		t.Fatalf("expected 2 pending reminders, got %d", second)
	}
}

func TestSharedOpportunityGetsOnePairPerPostulation(t *testing.T) {
	deadline := engineNow.Add(72 * time.Hour)
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher,
		&fakePosts{posts: []postulation.Postulation{
			activePost("post_1", "opp_1"),
			activePost("post_2", "opp_1"),
		}},
		&fakeOpps{opps: []opportunity.Opportunity{futureOpportunity("opp_1", &deadline, nil)}},
	)

	if err := e.RefreshReminders(context.Background()); err != nil {
		t.Fatalf("RefreshReminders failed: %v", err)
	}
	if got := len(dispatcher.pendingForUser("user_1")); got != 2 {
		t.Fatalf("expected one reminder per postulation occurrence, got %d", got)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	dispatcher := newFakeDispatcher()
	e, _ := newTestEngine(dispatcher, &fakePosts{}, &fakeOpps{})

	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	e.Cleanup()
	e.Cleanup()
}
