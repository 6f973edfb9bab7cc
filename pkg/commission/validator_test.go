package commission_test

import (
	"errors"
	"testing"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/commission"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
)

// TestValidateConfirmationCaseInsensitive verifies "Success" in any case
// passes validation.
func TestValidateConfirmationCaseInsensitive(t *testing.T) {
	for _, status := range []string{"success", "Success", "SUCCESS", "sUcCeSs"} {
		err := commission.ValidateConfirmation(&event.ConfirmationResult{Status: status})
		if err != nil {
			t.Errorf("ValidateConfirmation(%q) = %v, want nil", status, err)
		}
	}
}

// TestValidateConfirmationDescriptionPriority verifies the ordered message
// fallback: description, then errorMessage, then a generic string.
func TestValidateConfirmationDescriptionPriority(t *testing.T) {
	tests := []struct {
		name   string
		result *event.ConfirmationResult
		want   string
	}{
		{
			"description wins",
			&event.ConfirmationResult{Status: "failed", Description: "device declined", ErrorMessage: "ignored"},
			"device declined",
		},
		{
			"error message fallback",
			&event.ConfirmationResult{Status: "failed", ErrorMessage: "bad challenge"},
			"bad challenge",
		},
		{
			"generic fallback",
			&event.ConfirmationResult{Status: "failed"},
			"Device rejected the ownership challenge",
		},
		{
			"nil result",
			nil,
			"Device rejected the ownership challenge",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := commission.ValidateConfirmation(tt.result)
			var confirmation *commission.ConfirmationError
			if !errors.As(err, &confirmation) {
				t.Fatalf("err = %v, want *ConfirmationError", err)
			}
			if confirmation.Description != tt.want {
				t.Errorf("Description = %q, want %q", confirmation.Description, tt.want)
			}
		})
	}
}

// TestFailureMessagePassthrough verifies device-reported text reaches the
// user verbatim while internal errors get category text.
func TestFailureMessagePassthrough(t *testing.T) {
	confirmation := &commission.ConfirmationError{Description: "bad challenge"}
	if got := commission.FailureMessage(confirmation); got != "bad challenge" {
		t.Errorf("FailureMessage(ConfirmationError) = %q, want bad challenge", got)
	}

	native := &commission.NativeCommissioningError{Message: "PASE verifier mismatch"}
	if got := commission.FailureMessage(native); got != "PASE verifier mismatch" {
		t.Errorf("FailureMessage(NativeCommissioningError) = %q", got)
	}

	if got := commission.FailureMessage(errors.New("weird")); got != "Commissioning failed" {
		t.Errorf("FailureMessage(unknown) = %q", got)
	}
}
