package event

// Raw event discriminator values emitted by the native bridge.
const (
	TypeNodeNOCRequest        = "NODE_NOC_REQUEST"
	TypeConfirmationRequest   = "COMMISSIONING_CONFIRMATION_REQUEST"
	TypeConfirmationResponse  = "COMMISSIONING_CONFIRMATION_RESPONSE"
	TypeCommissioningComplete = "COMMISSIONING_COMPLETE"
	TypeCommissioningError    = "COMMISSIONING_ERROR"

	discriminatorField = "eventType"
)

// RawEvent is a native bridge event payload as delivered: a loosely-typed
// map carrying an eventType discriminator and kind-specific fields.
type RawEvent map[string]any

// EventType returns the discriminator value, or "" if absent.
func (r RawEvent) EventType() string {
	s, _ := r[discriminatorField].(string)
	return s
}

// Kind identifies a normalized event.
type Kind uint8

const (
	// KindUnrecognized - the discriminator was missing or unknown.
	KindUnrecognized Kind = iota

	// KindNodeCertificateRequest - the device needs its node CSR signed.
	KindNodeCertificateRequest

	// KindOwnershipConfirmationRequest - the device issued an ownership challenge.
	KindOwnershipConfirmationRequest

	// KindOwnershipConfirmationResponse - the device answered the challenge.
	KindOwnershipConfirmationResponse

	// KindCommissioningComplete - the device joined the fabric.
	KindCommissioningComplete

	// KindCommissioningError - the native engine or device reported a failure.
	KindCommissioningError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNodeCertificateRequest:
		return "NODE_CERTIFICATE_REQUEST"
	case KindOwnershipConfirmationRequest:
		return "OWNERSHIP_CONFIRMATION_REQUEST"
	case KindOwnershipConfirmationResponse:
		return "OWNERSHIP_CONFIRMATION_RESPONSE"
	case KindCommissioningComplete:
		return "COMMISSIONING_COMPLETE"
	case KindCommissioningError:
		return "COMMISSIONING_ERROR"
	default:
		return "UNRECOGNIZED"
	}
}

// NormalizedEvent is the canonical event shape consumed by the session
// coordinator. Exactly one payload pointer is set, matching Kind.
type NormalizedEvent struct {
	Kind Kind

	CertificateRequest *CertificateRequest
	Challenge          *OwnershipChallenge
	Confirmation       *ConfirmationResult
	Complete           *CompletionInfo
	Error              *ErrorInfo
}

// CertificateRequest carries a device CSR for the backend signing exchange.
type CertificateRequest struct {
	CSR      string
	DeviceID string
	GroupID  string
	FabricID string
}

// OwnershipChallenge is a device-ownership challenge awaiting a backend-
// verified response.
type OwnershipChallenge struct {
	DeviceID          string
	DomainNodeID      string
	RemoteNodeID      string
	ChallengeToken    string
	ChallengeResponse string
	RequestID         string
	Metadata          map[string]any
}

// ConfirmationResult is the device's answer to an ownership challenge.
type ConfirmationResult struct {
	Status       string
	Description  string
	ErrorMessage string
}

// CompletionInfo accompanies a successful commissioning terminal event.
type CompletionInfo struct {
	DeviceName string
}

// ErrorInfo accompanies a native commissioning failure.
type ErrorInfo struct {
	Message string

	// Retryable marks provisioning-step errors the native layer recovers
	// from on its own; the coordinator surfaces them as status text only.
	Retryable bool
}
