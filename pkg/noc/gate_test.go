package noc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/noc"
)

// mockIssuer is a testify mock of the backend issuance surface.
type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) IsUserCertificateIssued(ctx context.Context, fabricID string) (bool, error) {
	args := m.Called(ctx, fabricID)
	return args.Bool(0), args.Error(1)
}

func (m *mockIssuer) IssueUserCertificate(ctx context.Context, descriptor fabric.Descriptor) (*noc.IssuanceResponse, error) {
	args := m.Called(ctx, descriptor)
	if resp := args.Get(0); resp != nil {
		return resp.(*noc.IssuanceResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func testDescriptor() fabric.Descriptor {
	return fabric.Descriptor{FabricID: "fab-1", GroupID: "grp-1", Name: "Home"}
}

// TestGateSkipsIssuanceWhenAlreadyIssued verifies the idempotence property:
// an already-issued certificate means no issuance call and no store write.
func TestGateSkipsIssuanceWhenAlreadyIssued(t *testing.T) {
	issuer := &mockIssuer{}
	issuer.On("IsUserCertificateIssued", mock.Anything, "fab-1").Return(true, nil)

	store := noc.NewMemoryStore()
	gate := noc.NewGate(issuer, store, nil)

	if err := gate.EnsureCertificate(context.Background(), testDescriptor()); err != nil {
		t.Fatalf("EnsureCertificate failed: %v", err)
	}

	issuer.AssertNotCalled(t, "IssueUserCertificate", mock.Anything, mock.Anything)
	if store.Count() != 0 {
		t.Errorf("store writes = %d, want 0", store.Count())
	}
}

// TestGateIssuesAndPersists verifies the full issuance path stores a
// complete bundle before returning.
func TestGateIssuesAndPersists(t *testing.T) {
	issuer := &mockIssuer{}
	issuer.On("IsUserCertificateIssued", mock.Anything, "fab-1").Return(false, nil)
	issuer.On("IssueUserCertificate", mock.Anything, mock.Anything).Return(&noc.IssuanceResponse{
		Certificates: []noc.IssuedCertificate{{
			GroupID:      "grp-1",
			UserNOC:      "noc-pem",
			MatterUserID: "user-7",
			RootCA:       "root-pem",
		}},
	}, nil)

	store := noc.NewMemoryStore()
	gate := noc.NewGate(issuer, store, nil)

	if err := gate.EnsureCertificate(context.Background(), testDescriptor()); err != nil {
		t.Fatalf("EnsureCertificate failed: %v", err)
	}

	bundle, err := store.GetBundle("fab-1")
	if err != nil {
		t.Fatalf("bundle not persisted: %v", err)
	}
	if bundle.UserNOC != "noc-pem" || bundle.MatterUserID != "user-7" {
		t.Errorf("bundle = %+v", bundle)
	}
}

// TestGateRejectsGroupMismatch verifies a response naming a different group
// fails with ErrFabricIdentifierMismatch and persists nothing.
func TestGateRejectsGroupMismatch(t *testing.T) {
	issuer := &mockIssuer{}
	issuer.On("IsUserCertificateIssued", mock.Anything, "fab-1").Return(false, nil)
	issuer.On("IssueUserCertificate", mock.Anything, mock.Anything).Return(&noc.IssuanceResponse{
		Certificates: []noc.IssuedCertificate{{
			GroupID:      "grp-other",
			UserNOC:      "noc-pem",
			MatterUserID: "user-7",
			RootCA:       "root-pem",
		}},
	}, nil)

	store := noc.NewMemoryStore()
	gate := noc.NewGate(issuer, store, nil)

	err := gate.EnsureCertificate(context.Background(), testDescriptor())
	if !errors.Is(err, noc.ErrFabricIdentifierMismatch) {
		t.Fatalf("err = %v, want ErrFabricIdentifierMismatch", err)
	}
	if store.Count() != 0 {
		t.Errorf("credential persisted despite mismatch")
	}
}

// TestGateRejectsIncompleteCredential verifies missing required fields fail.
func TestGateRejectsIncompleteCredential(t *testing.T) {
	issuer := &mockIssuer{}
	issuer.On("IsUserCertificateIssued", mock.Anything, "fab-1").Return(false, nil)
	issuer.On("IssueUserCertificate", mock.Anything, mock.Anything).Return(&noc.IssuanceResponse{
		Certificates: []noc.IssuedCertificate{{
			GroupID: "grp-1",
			UserNOC: "noc-pem",
			// MatterUserID and RootCA missing
		}},
	}, nil)

	gate := noc.NewGate(issuer, noc.NewMemoryStore(), nil)

	err := gate.EnsureCertificate(context.Background(), testDescriptor())
	if !errors.Is(err, noc.ErrIncompleteCredential) {
		t.Fatalf("err = %v, want ErrIncompleteCredential", err)
	}
}

// TestGateEmptyIssuanceResponse verifies an empty certificate list fails.
func TestGateEmptyIssuanceResponse(t *testing.T) {
	issuer := &mockIssuer{}
	issuer.On("IsUserCertificateIssued", mock.Anything, "fab-1").Return(false, nil)
	issuer.On("IssueUserCertificate", mock.Anything, mock.Anything).Return(&noc.IssuanceResponse{}, nil)

	gate := noc.NewGate(issuer, noc.NewMemoryStore(), nil)

	err := gate.EnsureCertificate(context.Background(), testDescriptor())
	if !errors.Is(err, noc.ErrIncompleteCredential) {
		t.Fatalf("err = %v, want ErrIncompleteCredential", err)
	}
}

// TestGatePersistenceFailureIsFatal verifies a store failure aborts the
// attempt: commissioning must not proceed with an unstored credential.
func TestGatePersistenceFailureIsFatal(t *testing.T) {
	issuer := &mockIssuer{}
	issuer.On("IsUserCertificateIssued", mock.Anything, "fab-1").Return(false, nil)
	issuer.On("IssueUserCertificate", mock.Anything, mock.Anything).Return(&noc.IssuanceResponse{
		Certificates: []noc.IssuedCertificate{{
			GroupID:      "grp-1",
			UserNOC:      "noc-pem",
			MatterUserID: "user-7",
			RootCA:       "root-pem",
		}},
	}, nil)

	storeErr := errors.New("keychain locked")
	gate := noc.NewGate(issuer, &failingStore{err: storeErr}, nil)

	err := gate.EnsureCertificate(context.Background(), testDescriptor())
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

// failingStore fails every write.
type failingStore struct {
	noc.MemoryStore
	err error
}

func (s *failingStore) StoreBundle(*noc.CredentialBundle) error { return s.err }
