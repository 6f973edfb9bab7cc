package noc

import (
	"context"
	"fmt"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/log"
)

// Issuer is the backend certificate issuance surface the gate depends on.
type Issuer interface {
	// IsUserCertificateIssued reports whether the user already holds an
	// operational certificate for the fabric.
	IsUserCertificateIssued(ctx context.Context, fabricID string) (bool, error)

	// IssueUserCertificate requests issuance for the fabric and returns the
	// resulting certificate list keyed by group.
	IssueUserCertificate(ctx context.Context, descriptor fabric.Descriptor) (*IssuanceResponse, error)
}

// IssuanceResponse is the backend's answer to a certificate request.
type IssuanceResponse struct {
	Certificates []IssuedCertificate `json:"certificates"`
}

// IssuedCertificate is one entry of an issuance response.
type IssuedCertificate struct {
	GroupID            string   `json:"groupId"`
	UserNOC            string   `json:"userOperationalCertificate"`
	MatterUserID       string   `json:"matterUserId"`
	RootCA             string   `json:"rootCertificateAuthority"`
	IntermediateCAKeys []string `json:"interCertificateAuthorityKeys,omitempty"`
	GroupCategoryIDs   []string `json:"groupCategoryIds,omitempty"`
}

// Gate decides whether a user operational certificate must be issued before
// commissioning, requests it, and persists the credential bundle for the
// native engine.
type Gate struct {
	issuer Issuer
	store  SecureStore
	logger log.Logger
}

// NewGate creates a certificate issuer gate.
func NewGate(issuer Issuer, store SecureStore, logger log.Logger) *Gate {
	return &Gate{
		issuer: issuer,
		store:  store,
		logger: log.OrNoop(logger),
	}
}

// EnsureCertificate guarantees a stored user operational certificate exists
// for the fabric before the native engine is started.
//
// If a certificate is already issued this is a no-op: issuance is idempotent
// at the session level and never repeated. Otherwise the gate requests
// issuance, rejects responses naming a different group
// (ErrFabricIdentifierMismatch - a cross-fabric credential must never be
// stored), rejects incomplete credentials (ErrIncompleteCredential), and
// persists the bundle. A persistence failure is fatal to the attempt: the
// engine reads credentials only from secure storage.
func (g *Gate) EnsureCertificate(ctx context.Context, descriptor fabric.Descriptor) error {
	issued, err := g.checkIssued(ctx, descriptor)
	if err != nil {
		return err
	}
	if issued {
		return nil
	}

	response, err := g.issue(ctx, descriptor)
	if err != nil {
		return err
	}

	certificate, err := matchCertificate(response, descriptor)
	if err != nil {
		return err
	}

	bundle := &CredentialBundle{
		FabricID:           descriptor.FabricID,
		GroupID:            certificate.GroupID,
		UserNOC:            certificate.UserNOC,
		MatterUserID:       certificate.MatterUserID,
		RootCA:             certificate.RootCA,
		IntermediateCAKeys: certificate.IntermediateCAKeys,
		GroupCategoryIDs:   certificate.GroupCategoryIDs,
	}
	if err := bundle.Validate(); err != nil {
		return err
	}
	if err := g.store.StoreBundle(bundle); err != nil {
		return fmt.Errorf("persist credential bundle: %w", err)
	}
	return nil
}

func (g *Gate) checkIssued(ctx context.Context, descriptor fabric.Descriptor) (bool, error) {
	start := time.Now()
	issued, err := g.issuer.IsUserCertificateIssued(ctx, descriptor.FabricID)
	g.logBackend(descriptor, "is_user_certificate_issued", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("check certificate issuance: %w", err)
	}
	return issued, nil
}

func (g *Gate) issue(ctx context.Context, descriptor fabric.Descriptor) (*IssuanceResponse, error) {
	start := time.Now()
	response, err := g.issuer.IssueUserCertificate(ctx, descriptor)
	g.logBackend(descriptor, "issue_user_certificate", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("issue user certificate: %w", err)
	}
	return response, nil
}

// matchCertificate selects the certificate for the commissioned fabric and
// enforces the group identifier check.
func matchCertificate(response *IssuanceResponse, descriptor fabric.Descriptor) (*IssuedCertificate, error) {
	if response == nil || len(response.Certificates) == 0 {
		return nil, ErrIncompleteCredential
	}

	certificate := &response.Certificates[0]
	if certificate.GroupID != descriptor.GroupID {
		return nil, fmt.Errorf("%w: issued for group %q, commissioning group %q",
			ErrFabricIdentifierMismatch, certificate.GroupID, descriptor.GroupID)
	}
	return certificate, nil
}

func (g *Gate) logBackend(descriptor fabric.Descriptor, operation string, duration time.Duration, err error) {
	g.logger.Log(log.Event{
		Timestamp: time.Now(),
		FabricID:  descriptor.FabricID,
		Category:  log.CategoryBackend,
		Backend: &log.BackendCallEvent{
			Operation: operation,
			Duration:  duration,
			Failed:    err != nil,
		},
	})
}
