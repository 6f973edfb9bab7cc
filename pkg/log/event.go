package log

import (
	"time"
)

// Event represents a commissioning log event captured at any stage of a
// session. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the commissioning session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// FabricID is the fabric being commissioned into, when known.
	FabricID string `cbor:"4,keyasint,omitempty"`

	// DeviceID is the device identifier, when known.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"6,keyasint,omitempty"` // Session state machine
	Backend     *BackendCallEvent `cbor:"7,keyasint,omitempty"` // Certificate backend round trips
	Bridge      *BridgeEvent      `cbor:"8,keyasint,omitempty"` // Native bridge events
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // Errors at any stage
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a session state transition.
	CategoryState Category = 0
	// CategoryBackend indicates a certificate backend round trip.
	CategoryBackend Category = 1
	// CategoryBridge indicates an event received from the native bridge.
	CategoryBridge Category = 2
	// CategoryRefresh indicates a post-success listing refresh.
	// Kept distinct from CategoryError so operators can tell
	// "commissioned but list stale" from "commissioning failed".
	CategoryRefresh Category = 3
	// CategoryError indicates a commissioning error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryBackend:
		return "BACKEND"
	case CategoryBridge:
		return "BRIDGE"
	case CategoryRefresh:
		return "REFRESH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a session state machine transition.
type StateChangeEvent struct {
	// OldState is the state before the transition.
	OldState string `cbor:"1,keyasint"`

	// NewState is the state after the transition.
	NewState string `cbor:"2,keyasint"`

	// Reason describes why the transition occurred.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// BackendCallEvent captures a certificate backend round trip.
type BackendCallEvent struct {
	// Operation is the backend operation name (e.g. "issue_user_certificate").
	Operation string `cbor:"1,keyasint"`

	// Duration is how long the round trip took.
	Duration time.Duration `cbor:"2,keyasint,omitempty"`

	// Failed indicates the call returned an error.
	Failed bool `cbor:"3,keyasint,omitempty"`
}

// BridgeEvent captures an event received from the native bridge.
type BridgeEvent struct {
	// Kind is the normalized event kind name.
	Kind string `cbor:"1,keyasint"`

	// Suppressed indicates the platform routing table dropped the event
	// because a background task handles it natively.
	Suppressed bool `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures an error at any stage.
type ErrorEventData struct {
	// Stage is the session state when the error occurred.
	Stage string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
