package reminder

import (
	"context"
	"time"

	"github.com/voluntapp/voluntapp/internal/opportunity"
	"github.com/voluntapp/voluntapp/internal/postulation"
)

// StateStore is the persisted key-value store holding the engine's dedup
// state. Get returns nil for an absent key.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Dispatcher schedules and cancels local notifications.
// Satisfied by dispatch.Scheduler.
type Dispatcher interface {
	Schedule(ctx context.Context, userID, title, body string, data map[string]string, fireAt time.Time) (string, error)
	Cancel(ctx context.Context, id string)
	SweepBefore(ctx context.Context, userID string, generation int64)
}

// PostulationSource provides the user's active postulations for the
// reminder recomputation pass. Satisfied by postulation.Repository.
type PostulationSource interface {
	ListActiveByUser(ctx context.Context, userID string) ([]postulation.Postulation, error)
}

// OpportunitySource resolves the opportunities those postulations reference.
// Satisfied by opportunity.Repository.
type OpportunitySource interface {
	GetByIDs(ctx context.Context, ids []string) ([]opportunity.Opportunity, error)
}

// Subscription is a handle for an open live subscription.
type Subscription interface {
	Unsubscribe()
}

// Feed delivers live change events. Satisfied by Hub.
type Feed interface {
	SubscribePostulations(userID string, fn func(postulation.ChangeEvent)) Subscription
	SubscribeOpportunities(fn func(opportunity.ChangeEvent)) Subscription
}
