package goal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Goal is a user's monthly volunteering target, in hours.
type Goal struct {
	UserID      string `json:"user_id"`
	Month       string `json:"month"` // YYYY-MM
	TargetHours int    `json:"target_hours"`
	DoneHours   int    `json:"done_hours"`
}

// Store is the persisted key-value backend. Satisfied by RedisStore.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Service tracks the monthly goal. State is keyed per user and month so a
// new month starts from a clean slate.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func goalKey(userID, month string) string {
	return fmt.Sprintf("goal:%s:%s", userID, month)
}

func (s *Service) currentMonth() string {
	return s.now().Format("2006-01")
}

// SetTarget sets this month's target, keeping accumulated progress.
func (s *Service) SetTarget(ctx context.Context, userID string, targetHours int) (*Goal, error) {
	if targetHours <= 0 {
		return nil, fmt.Errorf("goal: target must be positive")
	}

	g, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	g.TargetHours = targetHours
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// AddProgress adds completed volunteer hours to this month's progress.
func (s *Service) AddProgress(ctx context.Context, userID string, hours int) (*Goal, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("goal: hours must be positive")
	}

	g, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	g.DoneHours += hours
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Get returns this month's goal, zero-valued when nothing is stored yet.
func (s *Service) Get(ctx context.Context, userID string) (*Goal, error) {
	month := s.currentMonth()
	raw, err := s.store.Get(ctx, goalKey(userID, month))
	if err != nil {
		return nil, fmt.Errorf("goal: load: %w", err)
	}

	g := &Goal{UserID: userID, Month: month}
	if raw != nil {
		if err := json.Unmarshal(raw, g); err != nil {
			return nil, fmt.Errorf("goal: decode: %w", err)
		}
	}
	return g, nil
}

func (s *Service) save(ctx context.Context, g *Goal) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("goal: encode: %w", err)
	}
	if err := s.store.Set(ctx, goalKey(g.UserID, g.Month), raw); err != nil {
		return fmt.Errorf("goal: save: %w", err)
	}
	return nil
}
