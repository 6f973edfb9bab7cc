// Package fabric converts a user-selected administrative domain (a fabric,
// or a plain group not yet fabric-enabled) into the immutable descriptor the
// native commissioning engine consumes.
package fabric

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidSelection indicates the selection carries no fabric identifier.
var ErrInvalidSelection = errors.New("selection has no fabric identifier")

// Selection is a group-or-fabric chosen by the user as the commissioning
// target. A plain group (FabricID empty) must be converted by the backend
// before it can host a commissioned device.
type Selection struct {
	// GroupID identifies the administrative group.
	GroupID string

	// FabricID is set when the group is already fabric-enabled.
	FabricID string

	// Name is the display name.
	Name string

	// RootCA is the fabric's root certificate authority, when known.
	RootCA string

	// Metadata is an opaque blob forwarded to the native engine.
	Metadata []byte
}

// Descriptor describes the fabric a device is commissioned into.
// Immutable once handed to the native engine; created per attempt and
// discarded on completion or failure.
type Descriptor struct {
	FabricID string
	GroupID  string
	Name     string
	RootCA   string
	Metadata []byte
}

// GroupConverter is the backend operation that fabric-enables a plain group.
// The returned selection must carry a fabric identifier.
type GroupConverter interface {
	ConvertGroupToFabric(ctx context.Context, groupID string) (Selection, error)
}

// Preparer builds fabric descriptors from user selections.
type Preparer struct {
	converter GroupConverter
}

// NewPreparer creates a Preparer using the given backend converter.
func NewPreparer(converter GroupConverter) *Preparer {
	return &Preparer{converter: converter}
}

// Prepare converts a selection into a fabric descriptor.
//
// Selections without any identifier fail with ErrInvalidSelection before any
// backend call. Plain groups are converted by the backend first; that round
// trip is awaited and its failure surfaced directly - retrying a conversion
// is the caller's decision, not an automatic one.
func (p *Preparer) Prepare(ctx context.Context, sel Selection) (Descriptor, error) {
	if sel.FabricID == "" && sel.GroupID == "" {
		return Descriptor{}, ErrInvalidSelection
	}

	if sel.FabricID == "" {
		converted, err := p.converter.ConvertGroupToFabric(ctx, sel.GroupID)
		if err != nil {
			return Descriptor{}, fmt.Errorf("convert group %s to fabric: %w", sel.GroupID, err)
		}
		if converted.FabricID == "" {
			return Descriptor{}, fmt.Errorf("group %s conversion: %w", sel.GroupID, ErrInvalidSelection)
		}
		converted.GroupID = sel.GroupID
		if converted.Name == "" {
			converted.Name = sel.Name
		}
		sel = converted
	}

	return Descriptor{
		FabricID: sel.FabricID,
		GroupID:  sel.GroupID,
		Name:     sel.Name,
		RootCA:   sel.RootCA,
		Metadata: sel.Metadata,
	}, nil
}
