package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/log"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/noc"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/version"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	// BaseURL is the backend API root (e.g. "https://api.example.com/v1").
	BaseURL string

	// AuthToken is sent as a bearer token on every request.
	AuthToken string

	// Timeout bounds each round trip. Defaults to 30s.
	Timeout time.Duration

	// Logger receives a BackendCallEvent per round trip. Optional.
	Logger log.Logger
}

// Validate checks the configuration.
func (c *HTTPConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid backend base URL: %w", err)
	}
	return nil
}

// HTTPClient implements Client against the backend's JSON HTTP API.
type HTTPClient struct {
	config HTTPConfig
	client *http.Client
	logger log.Logger
}

// NewHTTPClient creates a backend client.
func NewHTTPClient(config HTTPConfig) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: log.OrNoop(config.Logger),
	}, nil
}

// IsUserCertificateIssued reports whether the user holds a NOC for the fabric.
func (c *HTTPClient) IsUserCertificateIssued(ctx context.Context, fabricID string) (bool, error) {
	var result struct {
		Issued bool `json:"issued"`
	}
	path := fmt.Sprintf("/fabrics/%s/user-noc/status", url.PathEscape(fabricID))
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return false, err
	}
	return result.Issued, nil
}

// IssueUserCertificate requests a user operational certificate for a fabric.
func (c *HTTPClient) IssueUserCertificate(ctx context.Context, descriptor fabric.Descriptor) (*noc.IssuanceResponse, error) {
	request := struct {
		FabricID string `json:"fabricId"`
		GroupID  string `json:"groupId"`
	}{descriptor.FabricID, descriptor.GroupID}

	var response noc.IssuanceResponse
	path := fmt.Sprintf("/fabrics/%s/user-noc", url.PathEscape(descriptor.FabricID))
	if err := c.call(ctx, http.MethodPost, path, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ConvertGroupToFabric fabric-enables a plain administrative group.
func (c *HTTPClient) ConvertGroupToFabric(ctx context.Context, groupID string) (fabric.Selection, error) {
	var result struct {
		GroupID  string `json:"groupId"`
		FabricID string `json:"fabricId"`
		Name     string `json:"name"`
		RootCA   string `json:"rootCertificateAuthority"`
		Metadata []byte `json:"metadata,omitempty"`
	}
	path := fmt.Sprintf("/groups/%s/convert", url.PathEscape(groupID))
	if err := c.call(ctx, http.MethodPost, path, nil, &result); err != nil {
		return fabric.Selection{}, err
	}
	return fabric.Selection{
		GroupID:  result.GroupID,
		FabricID: result.FabricID,
		Name:     result.Name,
		RootCA:   result.RootCA,
		Metadata: result.Metadata,
	}, nil
}

// SignNodeCSR exchanges a device CSR for a signed node certificate.
func (c *HTTPClient) SignNodeCSR(ctx context.Context, request event.CertificateRequest) (*SignedNodeCertificate, error) {
	body := struct {
		CSR      string `json:"csr"`
		DeviceID string `json:"deviceId"`
		GroupID  string `json:"groupId"`
		FabricID string `json:"fabricId"`
	}{request.CSR, request.DeviceID, request.GroupID, request.FabricID}

	var signed SignedNodeCertificate
	if err := c.call(ctx, http.MethodPost, "/nodes/csr", body, &signed); err != nil {
		return nil, err
	}
	return &signed, nil
}

// ConfirmNodeOwnership verifies a device ownership challenge.
func (c *HTTPClient) ConfirmNodeOwnership(ctx context.Context, challenge event.OwnershipChallenge) (*ConfirmationOutcome, error) {
	body := struct {
		NodeID            string `json:"nodeId"`
		RemoteNodeID      string `json:"matterNodeId"`
		Challenge         string `json:"challenge"`
		ChallengeResponse string `json:"challengeResponse"`
		RequestID         string `json:"requestId"`
	}{challenge.DomainNodeID, challenge.RemoteNodeID, challenge.ChallengeToken,
		challenge.ChallengeResponse, challenge.RequestID}

	var outcome ConfirmationOutcome
	if err := c.call(ctx, http.MethodPost, "/nodes/ownership/confirm", body, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// ListNodes fetches the first page of the owned-device listing.
func (c *HTTPClient) ListNodes(ctx context.Context) (*NodePage, error) {
	var page NodePage
	if err := c.call(ctx, http.MethodGet, "/nodes?page=1", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListFabrics fetches the fabric/group listing.
func (c *HTTPClient) ListFabrics(ctx context.Context) ([]fabric.Selection, error) {
	var result struct {
		Fabrics []struct {
			GroupID  string `json:"groupId"`
			FabricID string `json:"fabricId"`
			Name     string `json:"name"`
		} `json:"fabrics"`
	}
	if err := c.call(ctx, http.MethodGet, "/fabrics", nil, &result); err != nil {
		return nil, err
	}
	selections := make([]fabric.Selection, 0, len(result.Fabrics))
	for _, f := range result.Fabrics {
		selections = append(selections, fabric.Selection{
			GroupID:  f.GroupID,
			FabricID: f.FabricID,
			Name:     f.Name,
		})
	}
	return selections, nil
}

// call performs one JSON round trip.
func (c *HTTPClient) call(ctx context.Context, method, path string, body, result any) error {
	start := time.Now()
	err := c.doCall(ctx, method, path, body, result)
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryBackend,
		Backend: &log.BackendCallEvent{
			Operation: method + " " + path,
			Duration:  time.Since(start),
			Failed:    err != nil,
		},
	})
	return err
}

func (c *HTTPClient) doCall(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(method, path, resp)
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// responseError maps a failed response to a typed error, preferring the
// backend's own message when it sends one.
func responseError(method, path string, resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &payload)

	message := payload.Message
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrUnauthorized, message)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrNotFound, message)
	default:
		return fmt.Errorf("%s %s: backend error %d: %s", method, path, resp.StatusCode, message)
	}
}

// Compile-time interface satisfaction check.
var _ Client = (*HTTPClient)(nil)
