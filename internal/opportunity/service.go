package opportunity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voluntapp/voluntapp/internal/policy"
)

// Store is the subset of repository operations the service needs.
// *Repository satisfies it.
type Store interface {
	Create(ctx context.Context, o *Opportunity) error
	Update(ctx context.Context, o *Opportunity) error
	GetByID(ctx context.Context, id string) (*Opportunity, error)
	List(ctx context.Context, f Filters) ([]Opportunity, error)
}

type Service struct {
	store  Store
	events EventPublisher
	policy policy.PolicyEngine
	idGen  func() string
	now    func() time.Time
}

func NewService(store Store, events EventPublisher, engine policy.PolicyEngine) *Service {
	return &Service{
		store:  store,
		events: events,
		policy: engine,
		idGen:  func() string { return uuid.NewString() },
		now:    time.Now,
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type Actor struct {
	UserID string
	Roles  []policy.Role
}

func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (*Opportunity, error) {
	if err := s.authorize(ctx, actor, policy.ActionOpportunityCreate); err != nil {
		return nil, err
	}
	if req.Title == "" || req.Category == "" {
		return nil, fmt.Errorf("opportunity: title and category are required")
	}
	if req.Capacity < 0 || req.Hours < 0 {
		return nil, fmt.Errorf("opportunity: capacity and hours must not be negative")
	}

	now := s.now()
	o := &Opportunity{
		ID:             s.idGen(),
		OrganizerID:    actor.UserID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Modality:       req.Modality,
		Status:         StatusOpen,
		Capacity:       req.Capacity,
		Hours:          req.Hours,
		EnrollDeadline: req.EnrollDeadline,
		StartsAt:       req.StartsAt,
		Lat:            req.Lat,
		Lng:            req.Lng,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("opportunity: create: %w", err)
	}

	publishChange(ctx, s.events, ChangeAdded, *o)
	return o, nil
}

func (s *Service) Update(ctx context.Context, actor Actor, id string, req CreateRequest) (*Opportunity, error) {
	if err := s.authorize(ctx, actor, policy.ActionOpportunityUpdate); err != nil {
		return nil, err
	}

	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opportunity: get: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("opportunity: %s not found", id)
	}

	if req.Title != "" {
		o.Title = req.Title
	}
	if req.Description != "" {
		o.Description = req.Description
	}
	if req.Category != "" {
		o.Category = req.Category
	}
	if req.Modality != "" {
		o.Modality = req.Modality
	}
	if req.Capacity > 0 {
		o.Capacity = req.Capacity
	}
	if req.Hours > 0 {
		o.Hours = req.Hours
	}
	if req.EnrollDeadline != nil {
		o.EnrollDeadline = req.EnrollDeadline
	}
	if req.StartsAt != nil {
		o.StartsAt = req.StartsAt
	}
	o.UpdatedAt = s.now()

	if err := s.store.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("opportunity: update: %w", err)
	}

	publishChange(ctx, s.events, ChangeModified, *o)
	return o, nil
}

// SetStatus moves the opportunity to the given status (waitlist, closed, finished).
func (s *Service) SetStatus(ctx context.Context, actor Actor, id string, status Status) (*Opportunity, error) {
	if err := s.authorize(ctx, actor, policy.ActionOpportunityClose); err != nil {
		return nil, err
	}
	switch status {
	case StatusOpen, StatusWaitlist, StatusClosed, StatusFinished:
	default:
		return nil, fmt.Errorf("opportunity: invalid status %q", status)
	}

	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opportunity: get: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("opportunity: %s not found", id)
	}

	o.Status = status
	o.UpdatedAt = s.now()
	if err := s.store.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("opportunity: update status: %w", err)
	}

	publishChange(ctx, s.events, ChangeModified, *o)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Opportunity, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filters) ([]Opportunity, error) {
	return s.store.List(ctx, f)
}

func (s *Service) authorize(ctx context.Context, actor Actor, action policy.Action) error {
	result, err := s.policy.Check(ctx, &policy.PolicyContext{
		UserID: actor.UserID,
		Roles:  actor.Roles,
		Action: action,
	})
	if err != nil {
		return fmt.Errorf("opportunity: policy check: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("opportunity: denied: %s", result.Reason)
	}
	return nil
}
