// Package noc issues and stores user operational certificates (NOCs).
//
// The issuer gate decides whether a certificate must be requested from the
// backend before commissioning and guarantees the resulting credential
// bundle is persisted to secure storage before the native engine starts.
package noc

// SecureStore is the boundary to the platform's secure credential storage.
// On a real device this is backed by the native secure enclave; MemoryStore
// and FileStore serve tests and reference builds.
//
// Implementations must be safe for concurrent access.
type SecureStore interface {
	// StoreBundle persists a credential bundle, replacing any existing
	// bundle for the same fabric. The bundle must pass Validate.
	StoreBundle(bundle *CredentialBundle) error

	// GetBundle returns the bundle for a fabric.
	// Returns ErrBundleNotFound if none exists.
	GetBundle(fabricID string) (*CredentialBundle, error)

	// RemoveBundle deletes the bundle for a fabric.
	// Returns ErrBundleNotFound if none exists.
	RemoveBundle(fabricID string) error

	// ListFabrics returns all fabric IDs with stored bundles.
	ListFabrics() []string

	// Count returns the number of stored bundles.
	Count() int
}
