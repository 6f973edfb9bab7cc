package log

// MultiLogger fans each commissioning event out to several destinations,
// typically a console SlogAdapter alongside a FileLogger capture.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger creates a logger that forwards every event to each sink,
// in the order given.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log forwards the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, sink := range m.sinks {
		sink.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
