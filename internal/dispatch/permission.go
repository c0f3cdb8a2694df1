package dispatch

import "sync"

// PermissionState tracks whether the user allows notifications.
type PermissionState string

const (
	PermissionUnknown PermissionState = "unknown"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// PermissionGate holds the session's notification permission. A denial is
// terminal for the session: later grants are ignored until a new gate is
// created.
type PermissionGate struct {
	mu    sync.Mutex
	state PermissionState
}

func NewPermissionGate() *PermissionGate {
	return &PermissionGate{state: PermissionUnknown}
}

// Resolve records the outcome of a permission request.
func (g *PermissionGate) Resolve(granted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == PermissionDenied {
		return
	}
	if granted {
		g.state = PermissionGranted
	} else {
		g.state = PermissionDenied
	}
}

func (g *PermissionGate) State() PermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
