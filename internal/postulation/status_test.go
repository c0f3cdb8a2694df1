package postulation

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Status
		wantOK bool
	}{
		{"Canonical", "accepted", StatusAccepted, true},
		{"Canonical Upper", "ACCEPTED", StatusAccepted, true},
		{"Legacy Masculine", "aceptado", StatusAccepted, true},
		{"Legacy Feminine", "aceptada", StatusAccepted, true},
		{"Legacy Rejected", "rechazado", StatusRejected, true},
		{"Legacy Pending", "pendiente", StatusSubmitted, true},
		{"Legacy Finished", "finalizado", StatusCompleted, true},
		{"Whitespace", "  cancelled ", StatusCancelled, true},
		{"Unknown", "approved", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStatusActive(t *testing.T) {
	active := []Status{StatusSubmitted, StatusUnderReview, StatusAccepted}
	inactive := []Status{StatusRejected, StatusWaitlisted, StatusCancelled, StatusCompleted}

	for _, s := range active {
		if !s.Active() {
			t.Errorf("expected %q to be active", s)
		}
	}
	for _, s := range inactive {
		if s.Active() {
			t.Errorf("expected %q to be inactive", s)
		}
	}
}
