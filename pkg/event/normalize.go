package event

import (
	"encoding/json"
)

// Normalize converts a raw native event into its canonical form.
// It never fails: unknown discriminators yield KindUnrecognized and
// malformed payloads yield empty fields.
func Normalize(raw RawEvent) NormalizedEvent {
	switch raw.EventType() {
	case TypeNodeNOCRequest:
		return NormalizedEvent{
			Kind:               KindNodeCertificateRequest,
			CertificateRequest: normalizeCertificateRequest(raw),
		}
	case TypeConfirmationRequest:
		return NormalizedEvent{
			Kind:      KindOwnershipConfirmationRequest,
			Challenge: normalizeChallenge(raw),
		}
	case TypeConfirmationResponse:
		return NormalizedEvent{
			Kind: KindOwnershipConfirmationResponse,
			Confirmation: &ConfirmationResult{
				Status:       stringField(raw, "status"),
				Description:  stringField(raw, "description"),
				ErrorMessage: stringField(raw, "errorMessage"),
			},
		}
	case TypeCommissioningComplete:
		return NormalizedEvent{
			Kind:     KindCommissioningComplete,
			Complete: &CompletionInfo{DeviceName: stringField(raw, "deviceName")},
		}
	case TypeCommissioningError:
		return NormalizedEvent{
			Kind: KindCommissioningError,
			Error: &ErrorInfo{
				Message:   stringField(raw, "errorMessage"),
				Retryable: boolField(raw, "retryable"),
			},
		}
	default:
		return NormalizedEvent{Kind: KindUnrecognized}
	}
}

// normalizeCertificateRequest extracts CSR fields. The native layer delivers
// the request body either as a JSON-encoded string or as an already-decoded
// object; a parse failure degrades to empty fields rather than an error.
func normalizeCertificateRequest(raw RawEvent) *CertificateRequest {
	fields := raw
	if body, ok := raw["requestBody"]; ok {
		switch b := body.(type) {
		case string:
			var decoded map[string]any
			if err := json.Unmarshal([]byte(b), &decoded); err == nil {
				fields = decoded
			} else {
				fields = RawEvent{}
			}
		case map[string]any:
			fields = b
		default:
			fields = RawEvent{}
		}
	}

	return &CertificateRequest{
		CSR:      stringField(fields, "csr"),
		DeviceID: stringField(fields, "deviceId"),
		GroupID:  stringField(fields, "groupId"),
		FabricID: stringField(fields, "fabricId"),
	}
}

func normalizeChallenge(raw RawEvent) *OwnershipChallenge {
	metadata, _ := raw["metadata"].(map[string]any)
	return &OwnershipChallenge{
		DeviceID:          stringField(raw, "deviceId"),
		DomainNodeID:      stringField(raw, "rainmakerNodeId"),
		RemoteNodeID:      stringField(raw, "matterNodeId"),
		ChallengeToken:    stringField(raw, "challenge"),
		ChallengeResponse: stringField(raw, "challengeResponse"),
		RequestID:         stringField(raw, "requestId"),
		Metadata:          metadata,
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
