// Package log provides structured logging of commissioning events.
//
// The core emits one Event per observable occurrence: a session state
// change, a backend round trip, a native bridge event, a listing
// refresh, or an error. Applications choose where events go by
// implementing Logger or by using one of the provided implementations:
//
//   - NoopLogger: discard everything (the default)
//   - SlogAdapter: forward to a log/slog logger for console output
//   - FileLogger: append CBOR-encoded events to a file
//   - MultiLogger: fan out to several loggers at once
//
// Events are encoded with integer CBOR keys so long-running sessions
// can be captured compactly and replayed later with Reader.
package log
