package event

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Platform identifies the operating system hosting the native engine.
type Platform string

const (
	// PlatformAndroid hosts a background task that answers certificate and
	// ownership-confirmation requests without the foreground coordinator.
	PlatformAndroid Platform = "android"

	// PlatformIOS handles every event kind in the foreground.
	PlatformIOS Platform = "ios"
)

// Routing is the per-platform event routing table. It decides which event
// kinds reach the foreground coordinator and which typed response messages
// are skipped because a background task already answered them.
//
// Routing is selected once at startup and treated as immutable.
type Routing struct {
	// Platform this table applies to.
	Platform Platform

	// suppressed kinds are handled by a native background task and must not
	// be forwarded to the foreground coordinator.
	suppressed map[Kind]bool

	// skippedMessageTypes are typed-message types PostTypedMessage must
	// silently drop on this platform.
	skippedMessageTypes map[string]bool

	// refreshFabrics marks platforms whose background handling converts
	// groups to fabrics as a side effect, so a successful commissioning
	// must re-fetch the fabric listing too.
	refreshFabrics bool
}

// RefreshesFabricListing reports whether the fabric/group listing must be
// re-fetched after a successful commissioning on this platform.
func (r Routing) RefreshesFabricListing() bool {
	return r.refreshFabrics
}

// RoutingForPlatform returns the built-in routing table for a platform.
func RoutingForPlatform(platform Platform) (Routing, error) {
	switch platform {
	case PlatformAndroid:
		return Routing{
			Platform: PlatformAndroid,
			suppressed: map[Kind]bool{
				KindNodeCertificateRequest:       true,
				KindOwnershipConfirmationRequest: true,
			},
			skippedMessageTypes: map[string]bool{
				TypeNodeNOCRequest:      true,
				TypeConfirmationRequest: true,
			},
			refreshFabrics: true,
		}, nil
	case PlatformIOS:
		return Routing{Platform: PlatformIOS}, nil
	default:
		return Routing{}, fmt.Errorf("unknown platform %q", platform)
	}
}

// Forwards reports whether events of the given kind reach the foreground
// coordinator on this platform. Confirmation responses and completion are
// always forwarded: terminal and response handling is a UI-observable
// concern regardless of where intermediate steps run.
func (r Routing) Forwards(kind Kind) bool {
	switch kind {
	case KindOwnershipConfirmationResponse, KindCommissioningComplete, KindCommissioningError:
		return true
	}
	return !r.suppressed[kind]
}

// SkipsMessageType reports whether a typed response message must be dropped
// because a background task on this platform already answered it.
func (r Routing) SkipsMessageType(messageType string) bool {
	return r.skippedMessageTypes[messageType]
}

// routingFile is the YAML shape for a custom routing table.
type routingFile struct {
	Platform            string   `yaml:"platform"`
	SuppressedEvents    []string `yaml:"suppressed_events"`
	SkippedMessageTypes []string `yaml:"skipped_message_types"`
	RefreshFabrics      bool     `yaml:"refresh_fabric_listing"`
}

// LoadRouting reads a routing table from a YAML file. Used for platforms or
// bridge builds whose background handling differs from the built-in tables.
func LoadRouting(path string) (Routing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Routing{}, fmt.Errorf("read routing file: %w", err)
	}

	var file routingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Routing{}, fmt.Errorf("parse routing file: %w", err)
	}
	if file.Platform == "" {
		return Routing{}, fmt.Errorf("routing file %s: platform is required", path)
	}

	routing := Routing{
		Platform:            Platform(file.Platform),
		suppressed:          make(map[Kind]bool),
		skippedMessageTypes: make(map[string]bool),
		refreshFabrics:      file.RefreshFabrics,
	}
	for _, name := range file.SuppressedEvents {
		kind, err := kindFromDiscriminator(name)
		if err != nil {
			return Routing{}, fmt.Errorf("routing file %s: %w", path, err)
		}
		routing.suppressed[kind] = true
	}
	for _, messageType := range file.SkippedMessageTypes {
		routing.skippedMessageTypes[messageType] = true
	}
	return routing, nil
}

func kindFromDiscriminator(name string) (Kind, error) {
	switch name {
	case TypeNodeNOCRequest:
		return KindNodeCertificateRequest, nil
	case TypeConfirmationRequest:
		return KindOwnershipConfirmationRequest, nil
	case TypeConfirmationResponse:
		return KindOwnershipConfirmationResponse, nil
	case TypeCommissioningComplete:
		return KindCommissioningComplete, nil
	case TypeCommissioningError:
		return KindCommissioningError, nil
	default:
		return KindUnrecognized, fmt.Errorf("unknown event type %q", name)
	}
}
