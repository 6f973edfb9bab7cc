package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/log"
)

// writeTestLog writes a small two-session log file and returns its path.
func writeTestLog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.cblog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
	defer logger.Close()

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: base,
			SessionID: "session-a",
			Category:  log.CategoryState,
			FabricID:  "fab-1",
			StateChange: &log.StateChangeEvent{
				OldState: "Idle",
				NewState: "PreparingFabric",
			},
		},
		{
			Timestamp: base.Add(time.Second),
			SessionID: "session-a",
			Category:  log.CategoryBackend,
			FabricID:  "fab-1",
			Backend: &log.BackendCallEvent{
				Operation: "issue_user_certificate",
				Duration:  120 * time.Millisecond,
			},
		},
		{
			Timestamp: base.Add(2 * time.Second),
			SessionID: "session-a",
			Category:  log.CategoryState,
			FabricID:  "fab-1",
			StateChange: &log.StateChangeEvent{
				OldState: "Completing",
				NewState: "Completed",
			},
		},
		{
			Timestamp: base.Add(3 * time.Second),
			SessionID: "session-b",
			Category:  log.CategoryError,
			FabricID:  "fab-2",
			Error: &log.ErrorEventData{
				Stage:   "Failed",
				Message: "device unreachable",
			},
		},
	}
	for _, event := range events {
		logger.Log(event)
	}
	return path
}

func TestRunFilter_BySession(t *testing.T) {
	path := writeTestLog(t)
	output := filepath.Join(t.TempDir(), "filtered.cblog")

	err := RunFilter(path, FilterOptions{
		Output:    output,
		SessionID: "session-a",
	})
	if err != nil {
		t.Fatalf("RunFilter returned error: %v", err)
	}

	reader, err := log.NewReader(output)
	if err != nil {
		t.Fatalf("failed to open filtered file: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read filtered event: %v", err)
		}
		if event.SessionID != "session-a" {
			t.Errorf("filtered file contains session %q", event.SessionID)
		}
		count++
	}
	if count != 3 {
		t.Errorf("filtered event count = %d, want 3", count)
	}
}

func TestRunFilter_ByCategory(t *testing.T) {
	path := writeTestLog(t)
	output := filepath.Join(t.TempDir(), "errors.cblog")

	err := RunFilter(path, FilterOptions{
		Output:   output,
		Category: "error",
	})
	if err != nil {
		t.Fatalf("RunFilter returned error: %v", err)
	}

	reader, err := log.NewReader(output)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("expected one error event: %v", err)
	}
	if event.Error == nil || event.Error.Message != "device unreachable" {
		t.Errorf("unexpected event: %+v", event)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected EOF after one event, got %v", err)
	}
}

func TestRunFilter_InvalidTime(t *testing.T) {
	path := writeTestLog(t)
	err := RunFilter(path, FilterOptions{
		Output:    filepath.Join(t.TempDir(), "out.cblog"),
		TimeStart: "not-a-time",
	})
	if err == nil {
		t.Error("RunFilter should reject an invalid time-start")
	}
}

func TestRunView_EndToEnd(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{SessionID: "session-b"}, &buf); err != nil {
		t.Fatalf("RunView returned error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "session-a") {
		t.Errorf("view output contains filtered-out session: %s", output)
	}
	if !strings.Contains(output, "device unreachable") {
		t.Errorf("view output missing error message: %s", output)
	}
}

func TestRunStats_EndToEnd(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Total Events: 4") {
		t.Errorf("stats output missing total: %s", output)
	}
	if !strings.Contains(output, "Sessions: 2") {
		t.Errorf("stats output missing session count: %s", output)
	}
	if !strings.Contains(output, "Backend Calls: 1 (0 failed)") {
		t.Errorf("stats output missing backend summary: %s", output)
	}
	if !strings.Contains(output, "Final state: Completed") {
		t.Errorf("stats output missing final state: %s", output)
	}
	if !strings.Contains(output, "Errors: 1") {
		t.Errorf("stats output missing error count: %s", output)
	}
}

func TestRunExport_CSV(t *testing.T) {
	path := writeTestLog(t)
	output := filepath.Join(t.TempDir(), "export.csv")

	if err := RunExport(path, "csv", output); err != nil {
		t.Fatalf("RunExport returned error: %v", err)
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	data := string(raw)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 5 { // header + 4 events
		t.Fatalf("csv line count = %d, want 5", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,session_id,category") {
		t.Errorf("unexpected csv header: %s", lines[0])
	}
	if !strings.Contains(data, "issue_user_certificate") {
		t.Errorf("csv missing backend operation: %s", data)
	}
}

func TestRunExport_UnknownFormat(t *testing.T) {
	path := writeTestLog(t)
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("RunExport should reject an unknown format")
	}
}
