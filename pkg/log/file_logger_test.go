package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

// TestFileLoggerWriteAndRead verifies events written by FileLogger can be
// read back with Reader.
func TestFileLoggerWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commission.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp: time.Now().UTC(),
		SessionID: "sess-a",
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "IDLE",
			NewState: "PREPARING_FABRIC",
		},
	})
	logger.Log(Event{
		Timestamp: time.Now().UTC(),
		SessionID: "sess-a",
		Category:  CategoryBridge,
		Bridge:    &BridgeEvent{Kind: "COMMISSIONING_COMPLETE"},
	})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Double close is a no-op
	if err := logger.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	var count int
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

// TestReaderFilter verifies filtered reads only return matching events.
func TestReaderFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commission.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{Timestamp: time.Now(), SessionID: "sess-a", Category: CategoryState})
	logger.Log(Event{Timestamp: time.Now(), SessionID: "sess-b", Category: CategoryError,
		Error: &ErrorEventData{Stage: "STARTING_SESSION", Message: "boom"}})
	_ = logger.Close()

	category := CategoryError
	reader, err := NewFilteredReader(path, Filter{Category: &category})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.SessionID != "sess-b" {
		t.Errorf("SessionID = %q, want sess-b", event.SessionID)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after filtered events, got %v", err)
	}
}

// TestMultiLoggerFanOut verifies MultiLogger delivers to all loggers.
func TestMultiLoggerFanOut(t *testing.T) {
	var a, b recordingLogger

	multi := NewMultiLogger(&a, &b)
	multi.Log(Event{SessionID: "sess-x", Category: CategoryBackend})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan out counts = %d/%d, want 1/1", len(a.events), len(b.events))
	}
	if a.events[0].SessionID != "sess-x" {
		t.Errorf("SessionID = %q, want sess-x", a.events[0].SessionID)
	}
}

// recordingLogger captures events for assertions.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}
