package commission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/backend"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/bridge"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/log"
)

// Defaults for Config.
const (
	DefaultConfirmationTimeout = 10 * time.Minute
	DefaultFailureDisplayDelay = 2 * time.Second
	defaultRefreshTimeout      = 30 * time.Second
)

// FabricPreparer converts a selection into a fabric descriptor.
// Satisfied by *fabric.Preparer.
type FabricPreparer interface {
	Prepare(ctx context.Context, sel fabric.Selection) (fabric.Descriptor, error)
}

// Compile-time check: *fabric.Preparer implements FabricPreparer.
var _ FabricPreparer = (*fabric.Preparer)(nil)

// CertificateGate ensures a stored user operational certificate exists.
// Satisfied by *noc.Gate.
type CertificateGate interface {
	EnsureCertificate(ctx context.Context, descriptor fabric.Descriptor) error
}

// Backend is the slice of the backend client the coordinator's event loop
// and completion handler use. Satisfied by backend.Client.
type Backend interface {
	SignNodeCSR(ctx context.Context, request event.CertificateRequest) (*backend.SignedNodeCertificate, error)
	ConfirmNodeOwnership(ctx context.Context, challenge event.OwnershipChallenge) (*backend.ConfirmationOutcome, error)
	ListNodes(ctx context.Context) (*backend.NodePage, error)
	ListFabrics(ctx context.Context) ([]fabric.Selection, error)
}

// Compile-time check: the full client satisfies the coordinator's slice.
var _ Backend = (backend.Client)(nil)

// Result is the single terminal signal a session raises.
type Result struct {
	// SessionID identifies the finished session.
	SessionID string

	// DeviceName is the commissioned device's name (success only).
	DeviceName string

	// Err is nil on success and on explicit cancellation.
	Err error

	// Message is the categorized user-facing failure text. Empty on success.
	Message string

	// Canceled marks an explicit user cancellation.
	Canceled bool
}

// Config configures a Coordinator.
type Config struct {
	// Routing is the platform event routing table.
	Routing event.Routing

	// ConfirmationTimeout bounds AwaitingConfirmation. Zero applies
	// DefaultConfirmationTimeout; negative disables the timeout and
	// preserves the wait-forever behavior of the native layer.
	ConfirmationTimeout time.Duration

	// FailureDisplayDelay is the pause between surfacing a failure message
	// and raising the terminal signal, so the message can be perceived.
	// Zero applies DefaultFailureDisplayDelay; negative disables it.
	FailureDisplayDelay time.Duration

	// Logger receives commissioning events. Optional.
	Logger log.Logger
}

// Coordinator drives the commissioning session state machine.
type Coordinator struct {
	mu sync.Mutex

	preparer FabricPreparer
	gate     CertificateGate
	adapter  bridge.Adapter
	backend  Backend

	routing             event.Routing
	confirmationTimeout time.Duration
	failureDelay        time.Duration
	logger              log.Logger

	status  Status
	session *session

	// drain is the previous session's done channel when its event loop ran.
	// The next Start waits on it so at most one receiver is ever parked on
	// the shared native event stream.
	drain chan struct{}

	statusHandlers   []func(text string)
	terminalHandlers []func(Result)
}

// session is the per-attempt state. Its release (subscription teardown and
// context cancellation) runs exactly once however many terminal paths race
// for it.
type session struct {
	id         string
	payload    string
	descriptor fabric.Descriptor

	ctx     context.Context
	cancel  context.CancelFunc
	release sync.Once

	// loop records that the event loop goroutine was launched; done closes
	// when that goroutine has exited.
	loop bool
	done chan struct{}
}

// NewCoordinator creates a session coordinator.
func NewCoordinator(preparer FabricPreparer, gate CertificateGate, adapter bridge.Adapter, client Backend, config Config) (*Coordinator, error) {
	if preparer == nil || gate == nil || client == nil {
		return nil, fmt.Errorf("preparer, gate, and backend are required")
	}
	if adapter == nil {
		return nil, bridge.ErrAdapterUnavailable
	}

	confirmationTimeout := config.ConfirmationTimeout
	if confirmationTimeout == 0 {
		confirmationTimeout = DefaultConfirmationTimeout
	}
	failureDelay := config.FailureDisplayDelay
	if failureDelay == 0 {
		failureDelay = DefaultFailureDisplayDelay
	}

	return &Coordinator{
		preparer:            preparer,
		gate:                gate,
		adapter:             adapter,
		backend:             client,
		routing:             config.Routing,
		confirmationTimeout: confirmationTimeout,
		failureDelay:        failureDelay,
		logger:              log.OrNoop(config.Logger),
		status:              StatusIdle,
	}, nil
}

// Status returns the current session status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionID returns the active session's ID, or "" when idle.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.id
}

// OnStatus registers a handler for user-facing status text updates.
// Handlers must be registered before Start and must not block.
func (c *Coordinator) OnStatus(handler func(text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusHandlers = append(c.statusHandlers, handler)
}

// OnTerminal registers a handler for the terminal success/failure signal.
// Handlers run on the session's event loop: they must not block, and a
// follow-up Start belongs on its own goroutine.
func (c *Coordinator) OnTerminal(handler func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminalHandlers = append(c.terminalHandlers, handler)
}

// Start begins a commissioning attempt for the onboarding payload against
// the selected group or fabric.
//
// Start returns ErrSessionAlreadyActive while another session is
// non-terminal; the existing session is untouched. Any error during fabric
// preparation, certificate issuance, or the synchronous part of the native
// start is routed through the failure path (status text, terminal signal,
// Idle reset) and also returned to the caller. When Cancel wins a race
// against a still-running Start, Start abandons the remaining phases and
// returns ErrSessionCanceled; the cancellation was already reported through
// the terminal signal.
func (c *Coordinator) Start(ctx context.Context, onboardingPayload string, selection fabric.Selection) error {
	c.mu.Lock()
	if c.status != StatusIdle {
		c.mu.Unlock()
		return ErrSessionAlreadyActive
	}

	sess := &session{
		id:      uuid.NewString(),
		payload: onboardingPayload,
		done:    make(chan struct{}),
	}
	sess.ctx, sess.cancel = context.WithCancel(context.Background())
	c.session = sess
	c.setStatusLocked(sess, StatusPreparingFabric, "fabric selected")
	drain := c.drain
	c.drain = nil
	c.mu.Unlock()

	// The previous session's event loop may still be parked on the shared
	// native stream; wait for it to exit so it cannot steal this session's
	// events.
	if drain != nil {
		<-drain
	}

	c.emitStatus("Preparing fabric")
	descriptor, err := c.preparer.Prepare(ctx, selection)
	if err != nil {
		c.fail(sess, err)
		return err
	}
	sess.descriptor = descriptor

	// Each refused transition below means Cancel already tore the session
	// down while a phase was in flight; the remaining phases must not run.
	if !c.setStatus(sess, StatusIssuingCertificate, "fabric prepared") {
		return ErrSessionCanceled
	}
	c.emitStatus("Verifying user certificate")
	if err := c.gate.EnsureCertificate(ctx, descriptor); err != nil {
		c.fail(sess, err)
		return err
	}

	// Subscribe before invoking the engine: events are not ordered relative
	// to StartCommissioning's return, and an early event must not be lost.
	// The transition and the loop launch share one critical section so a
	// canceled session never gets a loop.
	c.mu.Lock()
	claimed := c.setStatusLocked(sess, StatusStartingSession, "credentials ready")
	if claimed {
		sess.loop = true
		go c.run(sess)
	}
	c.mu.Unlock()
	if !claimed {
		return ErrSessionCanceled
	}
	c.emitStatus("Starting commissioning session")

	// Re-verify the claim right before the engine call: the engine must not
	// start for a session Cancel has already released.
	c.mu.Lock()
	live := c.session == sess
	c.mu.Unlock()
	if !live {
		return ErrSessionCanceled
	}

	if err := c.adapter.StartCommissioning(ctx, onboardingPayload, descriptor); err != nil {
		c.fail(sess, err)
		return err
	}

	if c.setStatus(sess, StatusAwaitingConfirmation, "native session started") {
		c.emitStatus("Waiting for device")
	}
	return nil
}

// Cancel ends the active session without a failure report. It is a safe
// no-op when no session is active, and calling it repeatedly has no
// observable effect beyond the first call.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	sess := c.session
	claimed := sess != nil && c.status.Active() && c.setStatusLocked(sess, StatusIdle, "canceled")
	if claimed {
		c.session = nil
		if sess.loop {
			c.drain = sess.done
		}
	}
	c.mu.Unlock()
	if !claimed {
		return
	}

	sess.release.Do(sess.cancel)
	c.emitStatus("Commissioning canceled")
	c.notifyTerminal(Result{SessionID: sess.id, Canceled: true})
}

// setStatus transitions the session state under the lock. It reports
// whether the transition was applied.
func (c *Coordinator) setStatus(sess *session, to Status, reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setStatusLocked(sess, to, reason)
}

// setStatusLocked transitions the state machine. Transitions for a stale
// session or ones CanTransition rejects are dropped; racing terminal paths
// make both possible, and the first writer wins.
func (c *Coordinator) setStatusLocked(sess *session, to Status, reason string) bool {
	if c.session != sess || !CanTransition(c.status, to) {
		return false
	}
	from := c.status
	c.status = to
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sess.id,
		FabricID:  sess.descriptor.FabricID,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
	return true
}

func (c *Coordinator) emitStatus(text string) {
	c.mu.Lock()
	handlers := make([]func(string), len(c.statusHandlers))
	copy(handlers, c.statusHandlers)
	c.mu.Unlock()
	for _, handler := range handlers {
		handler(text)
	}
}

func (c *Coordinator) notifyTerminal(result Result) {
	c.mu.Lock()
	handlers := make([]func(Result), len(c.terminalHandlers))
	copy(handlers, c.terminalHandlers)
	c.mu.Unlock()
	for _, handler := range handlers {
		handler(result)
	}
}

// reset releases the session's event subscription and returns the machine
// to Idle. The release is idempotent: error and cleanup paths may race to
// call it, and only the first has any effect.
func (c *Coordinator) reset(sess *session, reason string) {
	sess.release.Do(sess.cancel)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess {
		return
	}
	c.setStatusLocked(sess, StatusIdle, reason)
	c.session = nil
	if sess.loop {
		c.drain = sess.done
	}
}
