package commission

import (
	"context"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/log"
)

// complete runs the terminal success path: refresh the owned-device listing
// (awaited - the UI must not navigate before the new device is listed),
// optionally refresh the fabric listing, raise the terminal signal, and
// reset to Idle.
func (c *Coordinator) complete(sess *session, info *event.CompletionInfo) {
	if !c.setStatusTerminalPath(sess, StatusCompleting, "commissioning complete event") {
		return
	}
	c.emitStatus("Finalizing")

	c.refreshListings(sess)

	c.setStatus(sess, StatusCompleted, "listings refreshed")
	deviceName := ""
	if info != nil {
		deviceName = info.DeviceName
	}
	c.emitStatus("Device added")
	c.notifyTerminal(Result{SessionID: sess.id, DeviceName: deviceName})
	c.reset(sess, "session completed")
}

// refreshListings re-fetches the first owned-device page, and on platforms
// with fabric-conversion side effects the fabric listing too. The device is
// already commissioned at this point: a refresh failure is logged under its
// own category and never reported as a commissioning failure.
func (c *Coordinator) refreshListings(sess *session) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRefreshTimeout)
	defer cancel()

	if _, err := c.backend.ListNodes(ctx); err != nil {
		c.logRefresh(sess, "list_nodes", err)
	}
	if c.routing.RefreshesFabricListing() {
		if _, err := c.backend.ListFabrics(ctx); err != nil {
			c.logRefresh(sess, "list_fabrics", err)
		}
	}
}

// fail runs the terminal failure path: categorized message, perception
// delay, terminal signal, Idle reset. Racing failure paths are resolved by
// the state machine - only the first caller moves the session to Failed.
func (c *Coordinator) fail(sess *session, err error) {
	if !c.setStatusTerminalPath(sess, StatusFailed, err.Error()) {
		return
	}

	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sess.id,
		FabricID:  sess.descriptor.FabricID,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Stage:   StatusFailed.String(),
			Message: err.Error(),
		},
	})

	message := FailureMessage(err)
	c.emitStatus(message)
	if c.failureDelay > 0 {
		time.Sleep(c.failureDelay)
	}
	c.notifyTerminal(Result{SessionID: sess.id, Err: err, Message: message})
	c.reset(sess, "session failed")
}

// setStatusTerminalPath claims a terminal transition for the session.
// Returns false when another terminal path already won or the session is
// stale, in which case the caller must do nothing.
func (c *Coordinator) setStatusTerminalPath(sess *session, to Status, reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setStatusLocked(sess, to, reason)
}

func (c *Coordinator) logRefresh(sess *session, operation string, err error) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sess.id,
		FabricID:  sess.descriptor.FabricID,
		Category:  log.CategoryRefresh,
		Error: &log.ErrorEventData{
			Stage:   StatusCompleting.String(),
			Message: operation + ": " + err.Error(),
		},
	})
}
