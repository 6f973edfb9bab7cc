package fabric_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
)

// fakeConverter records conversion calls and returns a scripted result.
type fakeConverter struct {
	calls  int
	result fabric.Selection
	err    error
}

func (f *fakeConverter) ConvertGroupToFabric(_ context.Context, groupID string) (fabric.Selection, error) {
	f.calls++
	if f.err != nil {
		return fabric.Selection{}, f.err
	}
	return f.result, nil
}

// TestPrepareRejectsEmptySelection verifies selections without any
// identifier fail before any backend call.
func TestPrepareRejectsEmptySelection(t *testing.T) {
	converter := &fakeConverter{}
	preparer := fabric.NewPreparer(converter)

	_, err := preparer.Prepare(context.Background(), fabric.Selection{Name: "Living Room"})
	if !errors.Is(err, fabric.ErrInvalidSelection) {
		t.Fatalf("err = %v, want ErrInvalidSelection", err)
	}
	if converter.calls != 0 {
		t.Errorf("backend called %d times, want 0", converter.calls)
	}
}

// TestPrepareFabricEnabledSelection verifies no conversion happens when the
// selection already carries a fabric identifier.
func TestPrepareFabricEnabledSelection(t *testing.T) {
	converter := &fakeConverter{}
	preparer := fabric.NewPreparer(converter)

	descriptor, err := preparer.Prepare(context.Background(), fabric.Selection{
		GroupID:  "grp-1",
		FabricID: "fab-1",
		Name:     "Home",
		RootCA:   "root-ca-pem",
	})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if converter.calls != 0 {
		t.Errorf("backend called %d times, want 0", converter.calls)
	}
	if descriptor.FabricID != "fab-1" || descriptor.GroupID != "grp-1" {
		t.Errorf("descriptor = %+v", descriptor)
	}
}

// TestPrepareConvertsPlainGroup verifies the backend conversion is awaited
// and its result used.
func TestPrepareConvertsPlainGroup(t *testing.T) {
	converter := &fakeConverter{
		result: fabric.Selection{FabricID: "fab-9", RootCA: "converted-ca"},
	}
	preparer := fabric.NewPreparer(converter)

	descriptor, err := preparer.Prepare(context.Background(), fabric.Selection{
		GroupID: "grp-9",
		Name:    "Garage",
	})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if converter.calls != 1 {
		t.Errorf("backend called %d times, want 1", converter.calls)
	}
	if descriptor.FabricID != "fab-9" {
		t.Errorf("FabricID = %q, want fab-9", descriptor.FabricID)
	}
	if descriptor.GroupID != "grp-9" {
		t.Errorf("GroupID = %q, want grp-9", descriptor.GroupID)
	}
	if descriptor.Name != "Garage" {
		t.Errorf("Name = %q, want Garage (preserved from selection)", descriptor.Name)
	}
	if descriptor.RootCA != "converted-ca" {
		t.Errorf("RootCA = %q", descriptor.RootCA)
	}
}

// TestPrepareConversionFailureSurfaces verifies a failed conversion is
// returned to the caller unretried.
func TestPrepareConversionFailureSurfaces(t *testing.T) {
	backendErr := errors.New("backend down")
	converter := &fakeConverter{err: backendErr}
	preparer := fabric.NewPreparer(converter)

	_, err := preparer.Prepare(context.Background(), fabric.Selection{GroupID: "grp-2"})
	if !errors.Is(err, backendErr) {
		t.Fatalf("err = %v, want wrapped backend error", err)
	}
	if converter.calls != 1 {
		t.Errorf("backend called %d times, want exactly 1 (no retry)", converter.calls)
	}
}

// TestPrepareConversionWithoutFabricID verifies a conversion that still
// yields no fabric identifier is rejected.
func TestPrepareConversionWithoutFabricID(t *testing.T) {
	converter := &fakeConverter{result: fabric.Selection{}}
	preparer := fabric.NewPreparer(converter)

	_, err := preparer.Prepare(context.Background(), fabric.Selection{GroupID: "grp-3"})
	if !errors.Is(err, fabric.ErrInvalidSelection) {
		t.Fatalf("err = %v, want ErrInvalidSelection", err)
	}
}
