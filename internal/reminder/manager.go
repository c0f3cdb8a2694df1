package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// ActiveUserSource lists the users with active postulations, used to
// bootstrap engines on daemon start. Satisfied by postulation.Repository.
type ActiveUserSource interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

// Manager owns one Engine per user. Engines are created lazily as events
// arrive and on bootstrap, and torn down together on shutdown.
type Manager struct {
	store      StateStore
	dispatcher Dispatcher
	posts      PostulationSource
	opps       OpportunitySource
	feed       Feed
	loc        *time.Location
	now        func() time.Time

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewManager(store StateStore, dispatcher Dispatcher, posts PostulationSource, opps OpportunitySource, feed Feed) *Manager {
	return &Manager{
		store:      store,
		dispatcher: dispatcher,
		posts:      posts,
		opps:       opps,
		feed:       feed,
		loc:        time.Local,
		now:        time.Now,
		engines:    make(map[string]*Engine),
	}
}

func (m *Manager) WithLocation(loc *time.Location) *Manager {
	m.loc = loc
	return m
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// EnsureEngine returns the user's engine, creating and initializing it on
// first use.
func (m *Manager) EnsureEngine(ctx context.Context, userID string) (*Engine, error) {
	m.mu.Lock()
	engine, ok := m.engines[userID]
	if !ok {
		engine = NewEngine(userID, m.store, m.dispatcher, m.posts, m.opps, m.feed).
			WithLocation(m.loc).
			WithClock(m.now)
		m.engines[userID] = engine
	}
	m.mu.Unlock()

	if !ok {
		if err := engine.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("reminder: initialize engine for %s: %w", userID, err)
		}
	}
	return engine, nil
}

// Bootstrap creates engines for every user with an active postulation.
func (m *Manager) Bootstrap(ctx context.Context, users ActiveUserSource) error {
	userIDs, err := users.ListActiveUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("reminder: list active users: %w", err)
	}
	for _, userID := range userIDs {
		if _, err := m.EnsureEngine(ctx, userID); err != nil {
			log.Printf("Failed to bootstrap reminder engine for user %s: %v", userID, err)
		}
	}
	log.Printf("Bootstrapped %d reminder engines", len(userIDs))
	return nil
}

// RefreshAll re-runs the reminder recomputation pass for every engine.
func (m *Manager) RefreshAll(ctx context.Context) {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for _, e := range m.engines {
		engines = append(engines, e)
	}
	m.mu.Unlock()

	for _, e := range engines {
		if err := e.RefreshReminders(ctx); err != nil {
			log.Printf("Failed to refresh reminders for user %s: %v", e.userID, err)
		}
	}
}

// Shutdown cleans up every engine.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.engines {
		e.Cleanup()
	}
	m.engines = make(map[string]*Engine)
}
