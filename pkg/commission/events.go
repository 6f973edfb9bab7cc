package commission

import (
	"fmt"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/bridge"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/log"
)

// run is the session event loop. It consumes the native event stream until
// a terminal event, a timeout, or release cancels it.
func (c *Coordinator) run(sess *session) {
	defer close(sess.done)

	var timeoutCh <-chan time.Time
	if c.confirmationTimeout > 0 {
		timer := time.NewTimer(c.confirmationTimeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	events := c.adapter.Events()
	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-timeoutCh:
			c.fail(sess, ErrConfirmationTimeout)
			return
		case raw, ok := <-events:
			if !ok {
				c.fail(sess, &NativeCommissioningError{Message: "native event stream closed"})
				return
			}
			if terminal := c.handleEvent(sess, raw); terminal {
				return
			}
		}
	}
}

// handleEvent dispatches one raw native event. It returns true when the
// session reached a terminal state and the loop must stop.
func (c *Coordinator) handleEvent(sess *session, raw event.RawEvent) bool {
	normalized := event.Normalize(raw)

	forwarded := c.routing.Forwards(normalized.Kind)
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sess.id,
		FabricID:  sess.descriptor.FabricID,
		Category:  log.CategoryBridge,
		Bridge: &log.BridgeEvent{
			Kind:       normalized.Kind.String(),
			Suppressed: !forwarded,
		},
	})
	if !forwarded {
		// A background task on this platform already handles the event.
		return false
	}

	switch normalized.Kind {
	case event.KindNodeCertificateRequest:
		return c.handleCertificateRequest(sess, normalized.CertificateRequest)

	case event.KindOwnershipConfirmationRequest:
		return c.handleConfirmationRequest(sess, normalized.Challenge)

	case event.KindOwnershipConfirmationResponse:
		if err := ValidateConfirmation(normalized.Confirmation); err != nil {
			c.fail(sess, err)
			return true
		}
		c.emitStatus("Device ownership confirmed")
		return false

	case event.KindCommissioningComplete:
		c.complete(sess, normalized.Complete)
		return true

	case event.KindCommissioningError:
		if normalized.Error != nil && normalized.Error.Retryable {
			// The native layer retries this provisioning step on its own;
			// only the status text changes.
			c.emitStatus(normalized.Error.Message)
			return false
		}
		message := ""
		if normalized.Error != nil {
			message = normalized.Error.Message
		}
		c.fail(sess, &NativeCommissioningError{Message: message})
		return true

	default:
		// Unrecognized events are logged above and otherwise ignored.
		return false
	}
}

// handleCertificateRequest runs the backend CSR-signing exchange and routes
// the signed certificate back to the native engine.
func (c *Coordinator) handleCertificateRequest(sess *session, request *event.CertificateRequest) bool {
	if request == nil {
		return false
	}
	c.emitStatus("Issuing device certificate")

	start := time.Now()
	signed, err := c.backend.SignNodeCSR(sess.ctx, *request)
	c.logBackend(sess, "sign_node_csr", time.Since(start), err)
	if err != nil {
		c.fail(sess, fmt.Errorf("sign node CSR: %w", err))
		return true
	}

	message := bridge.TypedMessage{
		Type: bridge.MessageNodeNOCResponse,
		Data: map[string]any{
			"nodeId":      signed.NodeID,
			"certificate": signed.Certificate,
			"deviceId":    request.DeviceID,
		},
	}
	if err := c.postTypedMessage(sess, message); err != nil {
		c.fail(sess, err)
		return true
	}
	return false
}

// handleConfirmationRequest verifies the device ownership challenge with
// the backend and routes the verdict back to the native engine.
func (c *Coordinator) handleConfirmationRequest(sess *session, challenge *event.OwnershipChallenge) bool {
	if challenge == nil {
		return false
	}
	c.emitStatus("Confirming device ownership")

	start := time.Now()
	outcome, err := c.backend.ConfirmNodeOwnership(sess.ctx, *challenge)
	c.logBackend(sess, "confirm_node_ownership", time.Since(start), err)
	if err != nil {
		c.fail(sess, fmt.Errorf("confirm node ownership: %w", err))
		return true
	}

	message := bridge.TypedMessage{
		Type: bridge.MessageConfirmationResponse,
		Data: map[string]any{
			"status":            outcome.Status,
			"challengeResponse": outcome.ChallengeResponse,
			"description":       outcome.Description,
			"requestId":         challenge.RequestID,
		},
	}
	if err := c.postTypedMessage(sess, message); err != nil {
		c.fail(sess, err)
		return true
	}
	return false
}

// postTypedMessage routes a typed response to the native engine unless the
// platform's background task already answered it.
func (c *Coordinator) postTypedMessage(sess *session, message bridge.TypedMessage) error {
	if c.routing.SkipsMessageType(message.Type) {
		return nil
	}
	if err := c.adapter.PostTypedMessage(sess.ctx, message); err != nil {
		return fmt.Errorf("post %s response: %w", message.Type, err)
	}
	return nil
}

func (c *Coordinator) logBackend(sess *session, operation string, duration time.Duration, err error) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sess.id,
		FabricID:  sess.descriptor.FabricID,
		Category:  log.CategoryBackend,
		Backend: &log.BackendCallEvent{
			Operation: operation,
			Duration:  duration,
			Failed:    err != nil,
		},
	})
}
