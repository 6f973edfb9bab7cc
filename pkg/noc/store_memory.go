package noc

import (
	"sync"
)

// MemoryStore is an in-memory SecureStore implementation for tests and
// short-lived tooling. Bundles do not survive process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	bundles map[string]*CredentialBundle
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bundles: make(map[string]*CredentialBundle)}
}

// StoreBundle persists a credential bundle in memory.
func (s *MemoryStore) StoreBundle(bundle *CredentialBundle) error {
	if bundle == nil {
		return ErrIncompleteCredential
	}
	if err := bundle.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *bundle
	s.bundles[bundle.FabricID] = &copied
	return nil
}

// GetBundle returns the bundle for a fabric.
func (s *MemoryStore) GetBundle(fabricID string) (*CredentialBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bundle, exists := s.bundles[fabricID]
	if !exists {
		return nil, ErrBundleNotFound
	}
	copied := *bundle
	return &copied, nil
}

// RemoveBundle deletes the bundle for a fabric.
func (s *MemoryStore) RemoveBundle(fabricID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bundles[fabricID]; !exists {
		return ErrBundleNotFound
	}
	delete(s.bundles, fabricID)
	return nil
}

// ListFabrics returns all fabric IDs with stored bundles.
func (s *MemoryStore) ListFabrics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fabrics := make([]string, 0, len(s.bundles))
	for fabricID := range s.bundles {
		fabrics = append(fabrics, fabricID)
	}
	return fabrics
}

// Count returns the number of stored bundles.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bundles)
}

// Compile-time interface satisfaction check.
var _ SecureStore = (*MemoryStore)(nil)
