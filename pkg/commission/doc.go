// Package commission orchestrates the commissioning of a device into a
// fabric.
//
// The Coordinator owns the session state machine. A session walks
// Idle -> PreparingFabric -> IssuingCertificate -> StartingSession ->
// AwaitingConfirmation and then terminates in Completed or Failed, always
// returning to Idle so the next attempt can begin. Exactly one session may
// be active; a second Start while one is non-terminal is refused with
// ErrSessionAlreadyActive rather than queued - commissioning is a
// one-at-a-time human-attended workflow.
//
// Three collaborators are reconciled: the certificate backend (HTTP), the
// platform-native commissioning engine (bridge.Adapter), and the device,
// observed only through the engine's normalized event stream. The stream
// subscription is established before the engine is started so no early
// event is lost, and released exactly once on any terminal path.
package commission
