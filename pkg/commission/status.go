package commission

// Status represents the commissioning session state.
type Status uint8

const (
	// StatusIdle - no session active.
	StatusIdle Status = iota

	// StatusPreparingFabric - converting the selection into a fabric descriptor.
	StatusPreparingFabric

	// StatusIssuingCertificate - ensuring a stored user operational certificate.
	StatusIssuingCertificate

	// StatusStartingSession - invoking the native commissioning engine.
	StatusStartingSession

	// StatusAwaitingConfirmation - native session running, waiting for
	// device events.
	StatusAwaitingConfirmation

	// StatusCompleting - terminal success received, refreshing listings.
	StatusCompleting

	// StatusCompleted - session finished successfully.
	StatusCompleted

	// StatusFailed - session finished with an error.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusPreparingFabric:
		return "PREPARING_FABRIC"
	case StatusIssuingCertificate:
		return "ISSUING_CERTIFICATE"
	case StatusStartingSession:
		return "STARTING_SESSION"
	case StatusAwaitingConfirmation:
		return "AWAITING_CONFIRMATION"
	case StatusCompleting:
		return "COMPLETING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status ends a session.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Active reports whether a session is in progress (non-Idle, non-terminal).
func (s Status) Active() bool {
	return s != StatusIdle && !s.Terminal()
}

// CanTransition is the single transition validity function for the session
// state machine. Every status change goes through it; anything it rejects
// is a programming error surfaced by the coordinator.
//
// Any state may move to Failed (errors strike everywhere) and any state may
// move to Idle (terminal reset and explicit cancellation).
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusIdle:
		return true
	case StatusFailed:
		return from != StatusIdle
	case StatusPreparingFabric:
		return from == StatusIdle
	case StatusIssuingCertificate:
		return from == StatusPreparingFabric
	case StatusStartingSession:
		return from == StatusIssuingCertificate
	case StatusAwaitingConfirmation:
		return from == StatusStartingSession
	case StatusCompleting:
		// The native start call's resolution is not ordered relative to the
		// event stream; completion may arrive while still StartingSession.
		return from == StatusAwaitingConfirmation || from == StatusStartingSession
	case StatusCompleted:
		return from == StatusCompleting
	default:
		return false
	}
}
