// Package version identifies the commissioning protocol revision this
// library speaks.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol revision implemented by this library.
const Current = "1.0"

// ProtocolVersion is a parsed "major.minor" protocol revision. Revisions
// sharing a major number interoperate.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

// Parse reads a "major.minor" revision string such as "1.0".
func Parse(s string) (ProtocolVersion, error) {
	majorPart, minorPart, found := strings.Cut(s, ".")
	if !found {
		return ProtocolVersion{}, fmt.Errorf("protocol version %q is not of the form major.minor", s)
	}
	major, err := parseComponent(majorPart)
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("protocol version %q: major: %w", s, err)
	}
	minor, err := parseComponent(minorPart)
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("protocol version %q: minor: %w", s, err)
	}
	return ProtocolVersion{Major: major, Minor: minor}, nil
}

func parseComponent(s string) (uint16, error) {
	if s == "" {
		return 0, errors.New("empty component")
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// String formats the revision as "major.minor".
func (v ProtocolVersion) String() string {
	return strconv.FormatUint(uint64(v.Major), 10) + "." + strconv.FormatUint(uint64(v.Minor), 10)
}

// Compatible reports whether both revisions share a major number.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// UserAgent returns the User-Agent string sent on backend requests.
func UserAgent() string {
	return "fabriclink-go/" + Current
}
