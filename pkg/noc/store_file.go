package noc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// credentialsFile is the file name within the store directory.
const credentialsFile = "credentials.cbor"

// storeState is the on-disk shape of the file store.
type storeState struct {
	Version int                          `cbor:"1,keyasint"`
	Bundles map[string]*CredentialBundle `cbor:"2,keyasint"`
}

// storeStateVersion is the current file format version.
const storeStateVersion = 1

// FileStore is a file-backed SecureStore. Bundles are stored CBOR-encoded
// in a single file under the store directory; writes go through a temp file
// and rename so a crash never leaves a truncated store.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	bundles map[string]*CredentialBundle
}

// NewFileStore creates a file-backed store rooted at baseDir and loads any
// existing state. The directory is created if absent.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateStoreUnavailable, err)
	}

	s := &FileStore{
		baseDir: baseDir,
		bundles: make(map[string]*CredentialBundle),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// StoreBundle persists a credential bundle to disk.
func (s *FileStore) StoreBundle(bundle *CredentialBundle) error {
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
	return s.save()
}

// GetBundle returns the bundle for a fabric.
func (s *FileStore) GetBundle(fabricID string) (*CredentialBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bundle, exists := s.bundles[fabricID]
	if !exists {
		return nil, ErrBundleNotFound
	}
	copied := *bundle
	return &copied, nil
}

// RemoveBundle deletes the bundle for a fabric and persists the change.
func (s *FileStore) RemoveBundle(fabricID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bundles[fabricID]; !exists {
		return ErrBundleNotFound
	}
	delete(s.bundles, fabricID)
	return s.save()
}

// ListFabrics returns all fabric IDs with stored bundles.
func (s *FileStore) ListFabrics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fabrics := make([]string, 0, len(s.bundles))
	for fabricID := range s.bundles {
		fabrics = append(fabrics, fabricID)
	}
	return fabrics
}

// Count returns the number of stored bundles.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bundles)
}

// save writes the store state atomically. Caller holds the lock.
func (s *FileStore) save() error {
	state := storeState{
		Version: storeStateVersion,
		Bundles: s.bundles,
	}
	data, err := cbor.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode credential store: %w", err)
	}

	path := filepath.Join(s.baseDir, credentialsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrCertificateStoreUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", ErrCertificateStoreUnavailable, err)
	}
	return nil
}

// load reads existing store state, if any.
func (s *FileStore) load() error {
	path := filepath.Join(s.baseDir, credentialsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrCertificateStoreUnavailable, err)
	}

	var state storeState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode credential store: %w", err)
	}
	if state.Bundles != nil {
		s.bundles = state.Bundles
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ SecureStore = (*FileStore)(nil)
