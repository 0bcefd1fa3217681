package domain

// SessionState tracks the lifecycle of a cooking session.
type SessionState int

const (
	// SessionStaging is the ingredient checklist shown before cooking.
	SessionStaging SessionState = iota
	// SessionCooking means a step is active.
	SessionCooking
	// SessionComplete is terminal.
	SessionComplete
)

// String returns a human-readable session state.
func (s SessionState) String() string {
	switch s {
	case SessionStaging:
		return "staging"
	case SessionCooking:
		return "cooking"
	case SessionComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Timer is a countdown attached to a step. StepIndex is unique among the
// active timers of a registry.
type Timer struct {
	StepIndex int
	Label     string
	Remaining int // seconds
	State     TimerState
}

// TimerState represents the state of a timer.
type TimerState int

const (
	TimerRunning TimerState = iota
	TimerExpired
	TimerCancelled
)

// String returns a human-readable timer state.
func (t TimerState) String() string {
	switch t {
	case TimerRunning:
		return "running"
	case TimerExpired:
		return "expired"
	case TimerCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
