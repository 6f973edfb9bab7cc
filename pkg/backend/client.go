// Package backend talks to the certificate-issuing cloud backend.
//
// The session coordinator and issuer gate consume narrow slices of Client;
// HTTPClient is the production implementation. All operations take a
// context and perform exactly one round trip; retries are the caller's
// concern.
package backend

import (
	"context"
	"errors"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/noc"
)

// Client errors.
var (
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrNotFound     = errors.New("backend resource not found")
)

// Node is one owned-device entry in the backend listing.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FabricID  string `json:"fabricId"`
	Connected bool   `json:"connected"`
}

// NodePage is the first page of the owned-device listing.
type NodePage struct {
	Nodes      []Node `json:"nodes"`
	NextMarker string `json:"nextMarker,omitempty"`
}

// SignedNodeCertificate is the backend's answer to a node CSR exchange.
type SignedNodeCertificate struct {
	NodeID      string `json:"nodeId"`
	Certificate string `json:"certificate"`
}

// ConfirmationOutcome is the backend's verdict on an ownership challenge.
type ConfirmationOutcome struct {
	Status            string `json:"status"`
	ChallengeResponse string `json:"challengeResponse,omitempty"`
	Description       string `json:"description,omitempty"`
}

// Client is the full certificate backend surface.
type Client interface {
	// IsUserCertificateIssued reports whether the user already holds an
	// operational certificate for the fabric.
	IsUserCertificateIssued(ctx context.Context, fabricID string) (bool, error)

	// IssueUserCertificate requests a user operational certificate.
	IssueUserCertificate(ctx context.Context, descriptor fabric.Descriptor) (*noc.IssuanceResponse, error)

	// ConvertGroupToFabric fabric-enables a plain administrative group.
	ConvertGroupToFabric(ctx context.Context, groupID string) (fabric.Selection, error)

	// SignNodeCSR exchanges a device CSR for a signed node certificate.
	SignNodeCSR(ctx context.Context, request event.CertificateRequest) (*SignedNodeCertificate, error)

	// ConfirmNodeOwnership verifies a device ownership challenge.
	ConfirmNodeOwnership(ctx context.Context, challenge event.OwnershipChallenge) (*ConfirmationOutcome, error)

	// ListNodes fetches the first page of the owned-device listing.
	ListNodes(ctx context.Context) (*NodePage, error)

	// ListFabrics fetches the fabric/group listing.
	ListFabrics(ctx context.Context) ([]fabric.Selection, error)
}

// Compile-time checks: Client satisfies the consumers' narrow interfaces.
var (
	_ noc.Issuer            = (Client)(nil)
	_ fabric.GroupConverter = (Client)(nil)
)
