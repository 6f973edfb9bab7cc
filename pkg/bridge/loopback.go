package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
)

// LoopbackAdapter is an in-process Adapter that simulates a native engine
// and a cooperative device. It drives a scripted happy path: a certificate
// request, an ownership challenge, the device's confirmation response, and
// completion. Used by the reference commissioner binary and tests.
type LoopbackAdapter struct {
	mu      sync.Mutex
	events  chan event.RawEvent
	started bool

	// StepDelay spaces out scripted events so progress is visible. Zero
	// means no delay.
	StepDelay time.Duration

	// DeviceName reported on completion.
	DeviceName string
}

// NewLoopbackAdapter creates a loopback adapter.
func NewLoopbackAdapter() *LoopbackAdapter {
	return &LoopbackAdapter{
		events:     make(chan event.RawEvent, 16),
		DeviceName: "Loopback Device",
	}
}

// GenerateCSR returns a synthetic CSR.
func (a *LoopbackAdapter) GenerateCSR(_ context.Context, scope CSRScope) (*CSRResult, error) {
	return &CSRResult{
		CSR:         "loopback-csr-" + scope.FabricID,
		RequestBody: fmt.Sprintf(`{"csr":"loopback-csr-%s","fabricId":"%s"}`, scope.FabricID, scope.FabricID),
	}, nil
}

// StartCommissioning emits the scripted event sequence.
func (a *LoopbackAdapter) StartCommissioning(ctx context.Context, onboardingPayload string, descriptor fabric.Descriptor) error {
	if onboardingPayload == "" {
		return fmt.Errorf("%w: empty onboarding payload", ErrAdapterUnavailable)
	}

	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return fmt.Errorf("loopback session already running")
	}
	a.started = true
	a.mu.Unlock()

	go a.script(ctx, descriptor)
	return nil
}

func (a *LoopbackAdapter) script(ctx context.Context, descriptor fabric.Descriptor) {
	defer func() {
		a.mu.Lock()
		a.started = false
		a.mu.Unlock()
	}()

	script := []event.RawEvent{
		{
			"eventType": event.TypeNodeNOCRequest,
			"requestBody": fmt.Sprintf(`{"csr":"device-csr","deviceId":"loopback-1","groupId":"%s","fabricId":"%s"}`,
				descriptor.GroupID, descriptor.FabricID),
		},
		{
			"eventType":         event.TypeConfirmationRequest,
			"rainmakerNodeId":   "loopback-node",
			"matterNodeId":      "0x01",
			"challenge":         "loopback-challenge",
			"challengeResponse": "loopback-response",
			"deviceId":          "loopback-1",
			"requestId":         "req-loopback",
		},
		{
			"eventType": event.TypeConfirmationResponse,
			"status":    "Success",
		},
		{
			"eventType":  event.TypeCommissioningComplete,
			"deviceName": a.DeviceName,
		},
	}

	for _, raw := range script {
		if a.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.StepDelay):
			}
		}
		select {
		case <-ctx.Done():
			return
		case a.events <- raw:
		}
	}
}

// PostTypedMessage accepts and discards typed responses.
func (a *LoopbackAdapter) PostTypedMessage(_ context.Context, message TypedMessage) error {
	if message.Type == "" {
		return fmt.Errorf("typed message requires a type")
	}
	return nil
}

// Events returns the scripted event stream.
func (a *LoopbackAdapter) Events() <-chan event.RawEvent {
	return a.events
}

// Compile-time interface satisfaction check.
var _ Adapter = (*LoopbackAdapter)(nil)
