package commission

import (
	"strings"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
)

// genericConfirmationFailure is shown when the native layer provides no
// usable description. Error shapes differ across platforms; the ordered
// fallback below absorbs that.
const genericConfirmationFailure = "Device rejected the ownership challenge"

// ValidateConfirmation interprets a device ownership confirmation response.
// It succeeds iff the status equals "success", case-insensitively. On
// failure the returned ConfirmationError carries, in priority order, the
// response's description, its error message, or a generic fallback.
func ValidateConfirmation(result *event.ConfirmationResult) error {
	if result != nil && strings.EqualFold(result.Status, "success") {
		return nil
	}

	description := genericConfirmationFailure
	if result != nil {
		switch {
		case result.Description != "":
			description = result.Description
		case result.ErrorMessage != "":
			description = result.ErrorMessage
		}
	}
	return &ConfirmationError{Description: description}
}
