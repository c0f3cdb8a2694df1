package policy

import (
	"context"
	"fmt"
)

// Action represents an action that can be policy-controlled
type Action string

const (
	ActionOpportunityCreate Action = "opportunity.create"
	ActionOpportunityUpdate Action = "opportunity.update"
	ActionOpportunityClose  Action = "opportunity.close"
	ActionPostulationReview Action = "postulation.review"
	ActionNotificationTest  Action = "notification.test"
	ActionUserManage        Action = "user.manage"
)

// Role represents a user role
type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleReviewer  Role = "reviewer"
	RoleAdmin     Role = "admin"
)

// PolicyContext contains the context for policy evaluation
type PolicyContext struct {
	UserID   string
	Roles    []Role
	Resource map[string]interface{}
	Action   Action
}

// PolicyResult contains the result of a policy check
type PolicyResult struct {
	Allowed bool
	Reason  string
	Rules   []string // Which rules matched
}

// PolicyEngine is the interface for policy evaluation
type PolicyEngine interface {
	Check(ctx context.Context, pctx *PolicyContext) (*PolicyResult, error)
}

// HardcodedPolicyEngine implements the role matrix directly in code
type HardcodedPolicyEngine struct{}

// NewHardcodedPolicyEngine creates a new hardcoded policy engine
func NewHardcodedPolicyEngine() *HardcodedPolicyEngine {
	return &HardcodedPolicyEngine{}
}

// Check evaluates hardcoded policies
func (e *HardcodedPolicyEngine) Check(ctx context.Context, pctx *PolicyContext) (*PolicyResult, error) {
	result := &PolicyResult{
		Allowed: false,
		Rules:   make([]string, 0),
	}

	for _, role := range pctx.Roles {
		if e.roleAllowsAction(role, pctx.Action) {
			result.Allowed = true
			result.Reason = fmt.Sprintf("allowed by role: %s", role)
			result.Rules = append(result.Rules, fmt.Sprintf("role:%s", role))
			return result, nil
		}
	}

	result.Reason = "no matching policy found"
	return result, nil
}

// roleAllowsAction checks if a role permits an action
func (e *HardcodedPolicyEngine) roleAllowsAction(role Role, action Action) bool {
	// Admin can do everything
	if role == RoleAdmin {
		return true
	}

	permissions := map[Role][]Action{
		RoleOrganizer: {
			ActionOpportunityCreate,
			ActionOpportunityUpdate,
			ActionOpportunityClose,
			ActionPostulationReview,
		},
		RoleReviewer: {
			ActionPostulationReview,
		},
		RoleStudent: {
			// Students apply and browse only - no managed actions
		},
	}

	allowedActions, ok := permissions[role]
	if !ok {
		return false
	}

	for _, allowed := range allowedActions {
		if allowed == action {
			return true
		}
	}

	return false
}

// RequireRole is a helper that checks if the user has a specific role
func RequireRole(pctx *PolicyContext, required Role) error {
	for _, role := range pctx.Roles {
		if role == required || role == RoleAdmin {
			return nil
		}
	}
	return fmt.Errorf("role %s required", required)
}
