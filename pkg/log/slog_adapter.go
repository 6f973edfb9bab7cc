package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes commissioning events to an slog.Logger.
// Useful for development when you want to see session events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors are logged at Warn level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.FabricID != "" {
		attrs = append(attrs, slog.String("fabric_id", event.FabricID))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	// Add type-specific attributes
	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Backend != nil:
		attrs = append(attrs,
			slog.String("operation", event.Backend.Operation),
			slog.Bool("failed", event.Backend.Failed),
		)
		if event.Backend.Duration != 0 {
			attrs = append(attrs, slog.Duration("duration", event.Backend.Duration))
		}
	case event.Bridge != nil:
		attrs = append(attrs,
			slog.String("kind", event.Bridge.Kind),
			slog.Bool("suppressed", event.Bridge.Suppressed),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("stage", event.Error.Stage),
			slog.String("error_msg", event.Error.Message),
		)
	}

	level := slog.LevelDebug
	if event.Category == CategoryError {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "commissioning event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
