// Package bridge defines the contract the commissioning core requires from
// the platform-native commissioning engine.
//
// The native engine owns the device-proximity transport, the PASE/CASE
// handshake, and the secure enclave. This package only models its boundary:
// start a session, exchange typed messages, and observe its event stream.
package bridge

import (
	"context"
	"errors"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
)

// ErrAdapterUnavailable indicates a required native method is absent on
// this platform or bridge build.
var ErrAdapterUnavailable = errors.New("native commissioning adapter unavailable")

// Typed message types posted back to the native engine.
const (
	MessageNodeNOCResponse      = event.TypeNodeNOCRequest
	MessageConfirmationResponse = event.TypeConfirmationRequest
)

// TypedMessage routes a typed response back to the native engine.
type TypedMessage struct {
	// Type names the request being answered (event discriminator value).
	Type string

	// Data is the response payload.
	Data map[string]any
}

// CSRScope identifies the fabric a certificate signing request is bound to.
type CSRScope struct {
	FabricID string
	GroupID  string
}

// CSRResult is a certificate signing request generated by the secure enclave.
type CSRResult struct {
	CSR         string
	RequestBody string
	Metadata    map[string]any
}

// Adapter is the native commissioning engine boundary.
//
// StartCommissioning is asynchronous: a nil return means the engine accepted
// the session, and all further progress arrives on the Events channel. The
// channel is not ordered relative to StartCommissioning's own return - an
// event may be delivered before the call completes, so consumers must
// subscribe before invoking it.
type Adapter interface {
	// GenerateCSR asks the secure enclave for a certificate signing request
	// scoped to the fabric.
	GenerateCSR(ctx context.Context, scope CSRScope) (*CSRResult, error)

	// StartCommissioning starts a native commissioning session for the
	// onboarding payload against the fabric. Synchronous errors indicate
	// the engine never started.
	StartCommissioning(ctx context.Context, onboardingPayload string, descriptor fabric.Descriptor) error

	// PostTypedMessage routes a typed response back to the native engine.
	PostTypedMessage(ctx context.Context, message TypedMessage) error

	// Events returns the engine's raw event stream. The same channel is
	// returned on every call; it is closed only when the adapter shuts down.
	Events() <-chan event.RawEvent
}
