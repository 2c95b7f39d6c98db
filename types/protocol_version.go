package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// ProtocolVersion is the semantic version of the protocol a node speaks.
// Clients must tolerate minor and patch drift but reject a differing major.
type ProtocolVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ProtocolVersionFromParts builds a version from its components.
func ProtocolVersionFromParts(major, minor, patch uint32) ProtocolVersion {
	return ProtocolVersion{Major: major, Minor: minor, Patch: patch}
}

// ParseProtocolVersion parses a "major.minor.patch" string.
func ParseProtocolVersion(s string) (ProtocolVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return ProtocolVersion{}, fmt.Errorf("invalid protocol version %q", s)
	}
	var fields [3]uint32
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return ProtocolVersion{}, fmt.Errorf("invalid protocol version %q: %w", s, err)
		}
		fields[i] = uint32(v)
	}
	return ProtocolVersion{Major: fields[0], Minor: fields[1], Patch: fields[2]}, nil
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsCompatibleWith reports whether the two versions share a major version.
func (v ProtocolVersion) IsCompatibleWith(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// WriteBytes appends the three little-endian u32 components.
func (v ProtocolVersion) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU32(buf, v.Major)
	bytesrepr.WriteU32(buf, v.Minor)
	bytesrepr.WriteU32(buf, v.Patch)
}

// SerializedLength returns the encoded size of the version triple.
func (v ProtocolVersion) SerializedLength() int {
	return 3 * bytesrepr.U32SerializedLength
}

// ReadProtocolVersion consumes a version triple from the front of the input.
func ReadProtocolVersion(input []byte) (ProtocolVersion, []byte, error) {
	major, rem, err := bytesrepr.ReadU32(input)
	if err != nil {
		return ProtocolVersion{}, nil, err
	}
	minor, rem, err := bytesrepr.ReadU32(rem)
	if err != nil {
		return ProtocolVersion{}, nil, err
	}
	patch, rem, err := bytesrepr.ReadU32(rem)
	if err != nil {
		return ProtocolVersion{}, nil, err
	}
	return ProtocolVersion{Major: major, Minor: minor, Patch: patch}, rem, nil
}

// MarshalJSON encodes the version as a "major.minor.patch" string.
func (v ProtocolVersion) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes the version from its string form.
func (v *ProtocolVersion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProtocolVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
