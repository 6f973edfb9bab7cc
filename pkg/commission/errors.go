package commission

import (
	"errors"
	"fmt"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/bridge"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/noc"
)

// Coordinator errors.
var (
	// ErrSessionAlreadyActive rejects a new attempt while one is active.
	// Fatal to the new attempt only; the existing session is untouched.
	ErrSessionAlreadyActive = errors.New("a commissioning session is already active")

	// ErrConfirmationTimeout ends a session whose device never produced a
	// terminal event within the configured window.
	ErrConfirmationTimeout = errors.New("device confirmation timed out")

	// ErrSessionCanceled is returned by Start when Cancel tore the session
	// down while Start was still driving the pre-native phases. The
	// cancellation itself has already been raised as a terminal signal.
	ErrSessionCanceled = errors.New("commissioning session canceled")
)

// ConfirmationError indicates the device rejected the ownership challenge.
type ConfirmationError struct {
	// Description is the human-readable failure reason.
	Description string
}

// Error implements the error interface.
func (e *ConfirmationError) Error() string {
	return "ownership confirmation rejected: " + e.Description
}

// NativeCommissioningError wraps a failure reported by the native engine or
// the device, with free-text description.
type NativeCommissioningError struct {
	Message string
}

// Error implements the error interface.
func (e *NativeCommissioningError) Error() string {
	if e.Message == "" {
		return "native commissioning failed"
	}
	return fmt.Sprintf("native commissioning failed: %s", e.Message)
}

// FailureMessage maps a session error to the short categorized message shown
// to the user. Device-reported descriptions pass through verbatim; internal
// errors get a stable category text.
func FailureMessage(err error) string {
	var confirmation *ConfirmationError
	if errors.As(err, &confirmation) {
		return confirmation.Description
	}
	var native *NativeCommissioningError
	if errors.As(err, &native) {
		if native.Message != "" {
			return native.Message
		}
		return "Commissioning failed"
	}

	switch {
	case errors.Is(err, fabric.ErrInvalidSelection):
		return "Selected group cannot host a device"
	case errors.Is(err, noc.ErrFabricIdentifierMismatch):
		return "Certificate response does not match the selected fabric"
	case errors.Is(err, noc.ErrIncompleteCredential):
		return "Issued certificate is incomplete"
	case errors.Is(err, noc.ErrCertificateStoreUnavailable):
		return "Secure credential storage is unavailable"
	case errors.Is(err, bridge.ErrAdapterUnavailable):
		return "Commissioning is not supported on this device"
	case errors.Is(err, ErrConfirmationTimeout):
		return "Device did not respond in time"
	case errors.Is(err, ErrSessionAlreadyActive):
		return "Another commissioning attempt is already running"
	case errors.Is(err, ErrSessionCanceled):
		return "Commissioning canceled"
	default:
		return "Commissioning failed"
	}
}
