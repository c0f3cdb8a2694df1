package postulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voluntapp/voluntapp/internal/opportunity"
	"github.com/voluntapp/voluntapp/internal/policy"
)

// Store is the subset of repository operations the service needs.
type Store interface {
	Create(ctx context.Context, p *Postulation) error
	GetByID(ctx context.Context, id string) (*Postulation, error)
	GetByUserAndOpportunity(ctx context.Context, userID, opportunityID string) (*Postulation, error)
	ListByUser(ctx context.Context, userID string) ([]Postulation, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
}

// OpportunityGetter resolves the opportunity a user applies to.
type OpportunityGetter interface {
	GetByID(ctx context.Context, id string) (*opportunity.Opportunity, error)
}

type Service struct {
	store  Store
	opps   OpportunityGetter
	events EventPublisher
	policy policy.PolicyEngine
	idGen  func() string
	now    func() time.Time
}

func NewService(store Store, opps OpportunityGetter, events EventPublisher, engine policy.PolicyEngine) *Service {
	return &Service{
		store:  store,
		opps:   opps,
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

// Apply creates a postulation for an open opportunity whose deadline has not
// passed. One postulation per user per opportunity.
func (s *Service) Apply(ctx context.Context, userID string, req ApplyRequest) (*Postulation, error) {
	if userID == "" || req.OpportunityID == "" {
		return nil, fmt.Errorf("postulation: user and opportunity are required")
	}

	opp, err := s.opps.GetByID(ctx, req.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("postulation: load opportunity: %w", err)
	}
	if opp == nil {
		return nil, fmt.Errorf("postulation: opportunity %s not found", req.OpportunityID)
	}
	if opp.Status != opportunity.StatusOpen && opp.Status != opportunity.StatusWaitlist {
		return nil, fmt.Errorf("postulation: opportunity is not accepting applications")
	}
	if opp.EnrollDeadline != nil && s.now().After(*opp.EnrollDeadline) {
		return nil, fmt.Errorf("postulation: enrollment deadline has passed")
	}

	existing, err := s.store.GetByUserAndOpportunity(ctx, userID, req.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("postulation: lookup: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("postulation: already applied to this opportunity")
	}

	status := StatusSubmitted
	if opp.Status == opportunity.StatusWaitlist {
		status = StatusWaitlisted
	}

	now := s.now()
	p := &Postulation{
		ID:            s.idGen(),
		UserID:        userID,
		OpportunityID: req.OpportunityID,
		Status:        status,
		Message:       req.Message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("postulation: create: %w", err)
	}

	publishChange(ctx, s.events, ChangeAdded, *p)
	return p, nil
}

// Withdraw cancels the caller's own postulation.
func (s *Service) Withdraw(ctx context.Context, userID, postulationID string) (*Postulation, error) {
	p, err := s.store.GetByID(ctx, postulationID)
	if err != nil {
		return nil, fmt.Errorf("postulation: get: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("postulation: %s not found", postulationID)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("postulation: not the owner")
	}
	if !p.Status.Active() {
		return nil, fmt.Errorf("postulation: cannot withdraw in status %s", p.Status)
	}

	p.Status = StatusCancelled
	p.UpdatedAt = s.now()
	if err := s.store.UpdateStatus(ctx, p.ID, p.Status, p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("postulation: withdraw: %w", err)
	}

	publishChange(ctx, s.events, ChangeModified, *p)
	return p, nil
}

type ReviewParams struct {
	PostulationID string
	ActorID       string
	ActorRoles    []policy.Role
	RawStatus     string
}

// Review normalizes the incoming status and applies it. Legacy synonyms
// ("aceptado", "rechazada", ...) are accepted here and nowhere else.
func (s *Service) Review(ctx context.Context, params ReviewParams) (*Postulation, error) {
	result, err := s.policy.Check(ctx, &policy.PolicyContext{
		UserID: params.ActorID,
		Roles:  params.ActorRoles,
		Action: policy.ActionPostulationReview,
	})
	if err != nil {
		return nil, fmt.Errorf("postulation: policy check: %w", err)
	}
	if !result.Allowed {
		return nil, fmt.Errorf("postulation: denied: %s", result.Reason)
	}

	status, ok := Normalize(params.RawStatus)
	if !ok {
		return nil, fmt.Errorf("postulation: unknown status %q", params.RawStatus)
	}

	p, err := s.store.GetByID(ctx, params.PostulationID)
	if err != nil {
		return nil, fmt.Errorf("postulation: get: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("postulation: %s not found", params.PostulationID)
	}

	p.Status = status
	p.UpdatedAt = s.now()
	if err := s.store.UpdateStatus(ctx, p.ID, p.Status, p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("postulation: update status: %w", err)
	}

	publishChange(ctx, s.events, ChangeModified, *p)
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Postulation, error) {
	return s.store.ListByUser(ctx, userID)
}
