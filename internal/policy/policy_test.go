package policy

import (
	"context"
	"testing"
)

func TestHardcodedPolicyEngine_Check(t *testing.T) {
	engine := NewHardcodedPolicyEngine()

	tests := []struct {
		name    string
		roles   []Role
		action  Action
		allowed bool
	}{
		{"Admin Anything", []Role{RoleAdmin}, ActionUserManage, true},
		{"Organizer Creates Opportunity", []Role{RoleOrganizer}, ActionOpportunityCreate, true},
		{"Organizer Reviews", []Role{RoleOrganizer}, ActionPostulationReview, true},
		{"Reviewer Reviews", []Role{RoleReviewer}, ActionPostulationReview, true},
		{"Reviewer Cannot Create", []Role{RoleReviewer}, ActionOpportunityCreate, false},
		{"Student Cannot Review", []Role{RoleStudent}, ActionPostulationReview, false},
		{"No Roles", nil, ActionOpportunityCreate, false},
		{"Second Role Matches", []Role{RoleStudent, RoleOrganizer}, ActionOpportunityClose, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Check(context.Background(), &PolicyContext{
				UserID: "user_1",
				Roles:  tt.roles,
				Action: tt.action,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Allowed != tt.allowed {
				t.Errorf("Check(%v, %s) allowed = %v, want %v (reason: %s)",
					tt.roles, tt.action, result.Allowed, tt.allowed, result.Reason)
			}
		})
	}
}
