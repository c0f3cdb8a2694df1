package dispatch

import "testing"

func TestPermissionGateDenialIsTerminal(t *testing.T) {
	gate := NewPermissionGate()
	if gate.State() != PermissionUnknown {
		t.Fatalf("expected unknown, got %s", gate.State())
	}

	gate.Resolve(false)
	if gate.State() != PermissionDenied {
		t.Fatalf("expected denied, got %s", gate.State())
	}

	// A later grant must not override a denial within the same session.
	gate.Resolve(true)
	if gate.State() != PermissionDenied {
		t.Fatalf("denial should be terminal, got %s", gate.State())
	}
}

func TestPermissionGateGrant(t *testing.T) {
	gate := NewPermissionGate()
	gate.Resolve(true)
	if gate.State() != PermissionGranted {
		t.Fatalf("expected granted, got %s", gate.State())
	}
}
