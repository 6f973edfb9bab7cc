package event_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
)

// TestAndroidRoutingSuppressesBackgroundKinds verifies the Android table
// suppresses kinds the background task handles and skips the matching
// typed response messages.
func TestAndroidRoutingSuppressesBackgroundKinds(t *testing.T) {
	routing, err := event.RoutingForPlatform(event.PlatformAndroid)
	if err != nil {
		t.Fatalf("RoutingForPlatform failed: %v", err)
	}

	if routing.Forwards(event.KindNodeCertificateRequest) {
		t.Error("certificate requests should be suppressed on android")
	}
	if routing.Forwards(event.KindOwnershipConfirmationRequest) {
		t.Error("confirmation requests should be suppressed on android")
	}
	if !routing.SkipsMessageType(event.TypeNodeNOCRequest) {
		t.Error("NOC response messages should be skipped on android")
	}
}

// TestTerminalKindsAlwaysForwarded verifies responses and terminal events
// reach the foreground on every platform.
func TestTerminalKindsAlwaysForwarded(t *testing.T) {
	for _, platform := range []event.Platform{event.PlatformAndroid, event.PlatformIOS} {
		routing, err := event.RoutingForPlatform(platform)
		if err != nil {
			t.Fatalf("RoutingForPlatform(%s) failed: %v", platform, err)
		}
		for _, kind := range []event.Kind{
			event.KindOwnershipConfirmationResponse,
			event.KindCommissioningComplete,
			event.KindCommissioningError,
		} {
			if !routing.Forwards(kind) {
				t.Errorf("platform %s must forward %v", platform, kind)
			}
		}
	}
}

// TestIOSRoutingForwardsEverything verifies iOS has no background handling.
func TestIOSRoutingForwardsEverything(t *testing.T) {
	routing, err := event.RoutingForPlatform(event.PlatformIOS)
	if err != nil {
		t.Fatalf("RoutingForPlatform failed: %v", err)
	}
	if !routing.Forwards(event.KindNodeCertificateRequest) {
		t.Error("iOS should forward certificate requests")
	}
	if routing.SkipsMessageType(event.TypeNodeNOCRequest) {
		t.Error("iOS should not skip any message type")
	}
}

// TestRoutingForUnknownPlatform verifies unknown platforms are rejected.
func TestRoutingForUnknownPlatform(t *testing.T) {
	if _, err := event.RoutingForPlatform("plan9"); err == nil {
		t.Error("expected error for unknown platform")
	}
}

// TestLoadRoutingFromYAML verifies a custom table loads from file.
func TestLoadRoutingFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	content := `platform: custom
suppressed_events:
  - NODE_NOC_REQUEST
skipped_message_types:
  - NODE_NOC_REQUEST
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write routing file: %v", err)
	}

	routing, err := event.LoadRouting(path)
	if err != nil {
		t.Fatalf("LoadRouting failed: %v", err)
	}
	if routing.Platform != "custom" {
		t.Errorf("Platform = %q, want custom", routing.Platform)
	}
	if routing.Forwards(event.KindNodeCertificateRequest) {
		t.Error("custom table should suppress certificate requests")
	}
	if !routing.Forwards(event.KindOwnershipConfirmationRequest) {
		t.Error("kinds not listed must be forwarded")
	}
	if !routing.SkipsMessageType(event.TypeNodeNOCRequest) {
		t.Error("custom table should skip NOC messages")
	}
}

// TestLoadRoutingRejectsUnknownEventType verifies bad tables fail loudly.
func TestLoadRoutingRejectsUnknownEventType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	content := "platform: custom\nsuppressed_events: [NOT_AN_EVENT]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write routing file: %v", err)
	}
	if _, err := event.LoadRouting(path); err == nil {
		t.Error("expected error for unknown event type")
	}
}
