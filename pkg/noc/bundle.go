package noc

import (
	"errors"
)

// Credential errors.
var (
	ErrIncompleteCredential        = errors.New("credential bundle missing required fields")
	ErrFabricIdentifierMismatch    = errors.New("issued certificate names a different fabric")
	ErrBundleNotFound              = errors.New("credential bundle not found")
	ErrCertificateStoreUnavailable = errors.New("secure credential store unavailable")
)

// CredentialBundle is a user operational certificate with everything the
// native engine needs to act within a fabric. The bundle is owned by the
// issuer gate until it is persisted to secure storage; the engine reads
// credentials exclusively from that storage, never from process memory.
type CredentialBundle struct {
	// FabricID is the fabric the certificate is scoped to.
	FabricID string `cbor:"1,keyasint"`

	// GroupID is the administrative group backing the fabric.
	GroupID string `cbor:"2,keyasint"`

	// UserNOC is the user operational certificate (PEM).
	UserNOC string `cbor:"3,keyasint"`

	// MatterUserID is the user's operational identity within the fabric.
	MatterUserID string `cbor:"4,keyasint"`

	// RootCA is the fabric's root certificate authority (PEM).
	RootCA string `cbor:"5,keyasint"`

	// IntermediateCAKeys are optional intermediate CA identifiers.
	IntermediateCAKeys []string `cbor:"6,keyasint,omitempty"`

	// GroupCategoryIDs are optional category tags for the group.
	GroupCategoryIDs []string `cbor:"7,keyasint,omitempty"`
}

// Validate checks the completeness invariant: certificate, root CA, and
// user identity must all be present before the bundle may be persisted.
func (b *CredentialBundle) Validate() error {
	if b.UserNOC == "" || b.RootCA == "" || b.MatterUserID == "" {
		return ErrIncompleteCredential
	}
	return nil
}
