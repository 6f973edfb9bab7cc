// Package event normalizes native commissioning engine events.
//
// The native bridge delivers heterogeneous, loosely-typed payloads keyed by
// an eventType discriminator. Normalize converts each raw payload into one
// canonical NormalizedEvent so the session coordinator can switch on a typed
// kind instead of probing maps. Malformed payloads degrade to empty fields
// rather than failing: a bad event must never crash a running session.
//
// Routing captures the per-platform split between foreground and background
// handling. On platforms where a background task answers certificate and
// ownership-confirmation requests natively, those kinds are suppressed so
// the foreground coordinator does not double-process them. Confirmation
// responses and completion are always forwarded.
package event
