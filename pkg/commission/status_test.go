package commission_test

import (
	"testing"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/commission"
)

// TestStatusString verifies status names.
func TestStatusString(t *testing.T) {
	tests := []struct {
		status commission.Status
		want   string
	}{
		{commission.StatusIdle, "IDLE"},
		{commission.StatusPreparingFabric, "PREPARING_FABRIC"},
		{commission.StatusIssuingCertificate, "ISSUING_CERTIFICATE"},
		{commission.StatusStartingSession, "STARTING_SESSION"},
		{commission.StatusAwaitingConfirmation, "AWAITING_CONFIRMATION"},
		{commission.StatusCompleting, "COMPLETING"},
		{commission.StatusCompleted, "COMPLETED"},
		{commission.StatusFailed, "FAILED"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// TestCanTransition verifies the exhaustive transition function.
func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to commission.Status }{
		{commission.StatusIdle, commission.StatusPreparingFabric},
		{commission.StatusPreparingFabric, commission.StatusIssuingCertificate},
		{commission.StatusIssuingCertificate, commission.StatusStartingSession},
		{commission.StatusStartingSession, commission.StatusAwaitingConfirmation},
		{commission.StatusAwaitingConfirmation, commission.StatusCompleting},
		{commission.StatusStartingSession, commission.StatusCompleting},
		{commission.StatusCompleting, commission.StatusCompleted},
		{commission.StatusCompleted, commission.StatusIdle},
		{commission.StatusFailed, commission.StatusIdle},
		{commission.StatusAwaitingConfirmation, commission.StatusFailed},
		{commission.StatusPreparingFabric, commission.StatusFailed},
		{commission.StatusAwaitingConfirmation, commission.StatusIdle}, // cancel
	}
	for _, tt := range allowed {
		if !commission.CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%v, %v) = false, want true", tt.from, tt.to)
		}
	}

	denied := []struct{ from, to commission.Status }{
		{commission.StatusIdle, commission.StatusAwaitingConfirmation},
		{commission.StatusIdle, commission.StatusFailed},
		{commission.StatusIdle, commission.StatusIdle},
		{commission.StatusPreparingFabric, commission.StatusStartingSession},
		{commission.StatusCompleted, commission.StatusPreparingFabric},
		{commission.StatusAwaitingConfirmation, commission.StatusCompleted},
		{commission.StatusFailed, commission.StatusCompleted},
	}
	for _, tt := range denied {
		if commission.CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%v, %v) = true, want false", tt.from, tt.to)
		}
	}
}

// TestStatusPredicates verifies Active/Terminal classification.
func TestStatusPredicates(t *testing.T) {
	if commission.StatusIdle.Active() || commission.StatusIdle.Terminal() {
		t.Error("Idle must be neither active nor terminal")
	}
	if !commission.StatusAwaitingConfirmation.Active() {
		t.Error("AwaitingConfirmation must be active")
	}
	if !commission.StatusCompleted.Terminal() || !commission.StatusFailed.Terminal() {
		t.Error("Completed and Failed must be terminal")
	}
	if commission.StatusCompleted.Active() {
		t.Error("terminal states are not active")
	}
}
